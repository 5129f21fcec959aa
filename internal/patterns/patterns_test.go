package patterns

import (
	"math"
	"testing"

	"github.com/Nixiestone/smcbot/models"
)

func TestDetectFVGs(t *testing.T) {
	t.Run("Bullish gap above threshold", func(t *testing.T) {
		candles := []models.Candle{
			{Open: 1.0980, High: 1.0990, Low: 1.0975, Close: 1.0988},
			{Open: 1.0988, High: 1.1005, Low: 1.0987, Close: 1.1004},
			{Open: 1.1004, High: 1.1010, Low: 1.1000, Close: 1.1008},
		}

		fvgs := DetectFVGs(candles, 5)
		if len(fvgs) != 1 {
			t.Fatalf("DetectFVGs() found %d gaps, want 1", len(fvgs))
		}
		fvg := fvgs[0]
		if fvg.Type != models.TrendBullish {
			t.Errorf("gap type = %v, want BULLISH", fvg.Type)
		}
		if fvg.Upper != 1.1000 || fvg.Lower != 1.0990 {
			t.Errorf("gap bounds = [%v, %v], want [1.0990, 1.1000]", fvg.Lower, fvg.Upper)
		}
		if math.Abs(fvg.Size-0.0010) > 1e-9 {
			t.Errorf("gap size = %v, want 0.0010", fvg.Size)
		}
	})

	t.Run("Gap below threshold is ignored", func(t *testing.T) {
		// 3 tenths of a pip against a ~5.5 threshold
		candles := []models.Candle{
			{Open: 1.0980, High: 1.0997, Low: 1.0975, Close: 1.0988},
			{Open: 1.0988, High: 1.1005, Low: 1.0987, Close: 1.1004},
			{Open: 1.1004, High: 1.1010, Low: 1.1000, Close: 1.1008},
		}

		if fvgs := DetectFVGs(candles, 5); len(fvgs) != 0 {
			t.Errorf("DetectFVGs() found %d gaps, want 0", len(fvgs))
		}
	})

	t.Run("Mitigation is permanent", func(t *testing.T) {
		candles := []models.Candle{
			{Open: 1.0980, High: 1.0990, Low: 1.0975, Close: 1.0988},
			{Open: 1.0988, High: 1.1005, Low: 1.0987, Close: 1.1004},
			{Open: 1.1004, High: 1.1010, Low: 1.1000, Close: 1.1008},
			// Trades back into the gap
			{Open: 1.1008, High: 1.1009, Low: 1.0995, Close: 1.1002},
			// Price leaves the gap again; the gap must stay dead
			{Open: 1.1002, High: 1.1020, Low: 1.1002, Close: 1.1018},
		}

		if fvgs := DetectFVGs(candles, 5); len(fvgs) != 0 {
			t.Errorf("DetectFVGs() resurrected a mitigated gap: %+v", fvgs)
		}
	})

	t.Run("Short series", func(t *testing.T) {
		if fvgs := DetectFVGs([]models.Candle{{Close: 1}}, 5); fvgs != nil {
			t.Errorf("DetectFVGs() = %v, want nil", fvgs)
		}
	})
}

func TestDetectOrderBlocks(t *testing.T) {
	candles := smallBodySeries(25)
	// Bearish candle right before the displacement
	candles[23] = models.Candle{Open: 1.1000, High: 1.1003, Low: 1.0996, Close: 1.0998}
	// Displacement: body 20x the trailing average
	candles[24] = models.Candle{Open: 1.0998, High: 1.1040, Low: 1.0997, Close: 1.1038}

	blocks := DetectOrderBlocks(candles, 20, 2.0)
	if len(blocks) != 1 {
		t.Fatalf("DetectOrderBlocks() found %d blocks, want 1", len(blocks))
	}
	ob := blocks[0]
	if ob.Type != models.TrendBullish {
		t.Errorf("block type = %v, want BULLISH", ob.Type)
	}
	if ob.Index != 23 {
		t.Errorf("block index = %d, want 23", ob.Index)
	}
	if ob.Upper != 1.1003 || ob.Lower != 1.0996 {
		t.Errorf("block bounds = [%v, %v], want [1.0996, 1.1003]", ob.Lower, ob.Upper)
	}
	if ob.Strength <= 2.0 {
		t.Errorf("block strength = %v, want > 2.0", ob.Strength)
	}
}

func TestDetectOrderBlocksNoDisplacement(t *testing.T) {
	if blocks := DetectOrderBlocks(smallBodySeries(25), 20, 2.0); len(blocks) != 0 {
		t.Errorf("DetectOrderBlocks() found %d blocks in quiet tape, want 0", len(blocks))
	}
}

func TestCheckDisplacement(t *testing.T) {
	t.Run("Large bullish body", func(t *testing.T) {
		candles := smallBodySeries(25)
		candles[24] = models.Candle{Open: 1.1000, High: 1.1040, Low: 1.0999, Close: 1.1038}

		d := CheckDisplacement(candles, 2.5)
		if !d.Detected {
			t.Fatal("CheckDisplacement() missed an outsized candle")
		}
		if d.Direction != models.TrendBullish {
			t.Errorf("direction = %v, want BULLISH", d.Direction)
		}
		if d.Strength <= 2.5 {
			t.Errorf("strength = %v, want > 2.5", d.Strength)
		}
	})

	t.Run("Quiet tape", func(t *testing.T) {
		if d := CheckDisplacement(smallBodySeries(25), 2.5); d.Detected {
			t.Errorf("CheckDisplacement() = %+v, want no detection", d)
		}
	})
}

func TestCheckLiquiditySweep(t *testing.T) {
	t.Run("Bullish sweep of the previous day low", func(t *testing.T) {
		candles := smallBodySeries(10)
		// Pierce below the zone, then close back above it
		candles[7].Low = 1.0985
		candles[9].Close = 1.0995

		zones := []models.LiquidityZone{{Type: models.ZonePDL, Price: 1.0990, Strength: "HIGH"}}

		sweep := CheckLiquiditySweep(candles, zones)
		if !sweep.Detected {
			t.Fatal("CheckLiquiditySweep() missed the sweep")
		}
		if sweep.Type != models.TrendBullish {
			t.Errorf("sweep type = %v, want BULLISH", sweep.Type)
		}
		if sweep.Level != 1.0990 || sweep.LevelType != models.ZonePDL {
			t.Errorf("sweep level = %v %v, want 1.0990 PDL", sweep.Level, sweep.LevelType)
		}
	})

	t.Run("High-side zone ignores low-side pierce", func(t *testing.T) {
		candles := smallBodySeries(10)
		candles[7].Low = 1.0985
		candles[9].Close = 1.0995

		zones := []models.LiquidityZone{{Type: models.ZonePDH, Price: 1.0990, Strength: "HIGH"}}
		if sweep := CheckLiquiditySweep(candles, zones); sweep.Detected {
			t.Errorf("CheckLiquiditySweep() = %+v, want no detection", sweep)
		}
	})

	t.Run("No zones", func(t *testing.T) {
		if sweep := CheckLiquiditySweep(smallBodySeries(10), nil); sweep.Detected {
			t.Error("CheckLiquiditySweep() detected a sweep with no zones")
		}
	})
}

// smallBodySeries builds candles around 1.1000 with 2-tenths-of-a-pip
// bodies, alternating color.
func smallBodySeries(n int) []models.Candle {
	candles := make([]models.Candle, n)
	for i := range candles {
		open, close := 1.1000, 1.1002
		if i%2 == 1 {
			open, close = close, open
		}
		candles[i] = models.Candle{Open: open, High: 1.1004, Low: 1.0998, Close: close, Volume: 1000}
	}
	return candles
}
