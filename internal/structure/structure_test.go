package structure

import (
	"testing"

	"github.com/Nixiestone/smcbot/models"
)

func TestAnalyzeShortSeries(t *testing.T) {
	state := Analyze(flatSeries(4, 100))
	if state.BOSDetected || len(state.SwingHighs) != 0 || len(state.SwingLows) != 0 {
		t.Errorf("Analyze() on short series = %+v, want empty state", state)
	}
}

func TestAnalyzeSwingDetection(t *testing.T) {
	candles := flatSeries(30, 100)
	spikeHigh(candles, 5, 5)
	spikeHigh(candles, 15, 4)
	spikeLow(candles, 10, 5)
	spikeLow(candles, 20, 4)

	state := Analyze(candles)
	if len(state.SwingHighs) != 2 {
		t.Fatalf("Analyze() found %d swing highs, want 2", len(state.SwingHighs))
	}
	if len(state.SwingLows) != 2 {
		t.Fatalf("Analyze() found %d swing lows, want 2", len(state.SwingLows))
	}
	if state.SwingHighs[0].Index != 5 || state.SwingHighs[1].Index != 15 {
		t.Errorf("swing high indices = %d, %d, want 5, 15", state.SwingHighs[0].Index, state.SwingHighs[1].Index)
	}
}

func TestAnalyzePlateauIsNotASwing(t *testing.T) {
	// Equal neighboring highs fail the strict comparison
	candles := flatSeries(10, 100)
	candles[4].High = 105
	candles[5].High = 105

	state := Analyze(candles)
	if len(state.SwingHighs) != 0 {
		t.Errorf("Analyze() found %d swing highs on a plateau, want 0", len(state.SwingHighs))
	}
}

func TestAnalyzeBullishBOS(t *testing.T) {
	candles := flatSeries(30, 100)
	spikeHigh(candles, 5, 5)
	spikeHigh(candles, 15, 4)
	spikeLow(candles, 10, 5)
	spikeLow(candles, 20, 4)

	// Close above the second-most-recent swing high (105)
	candles[29].Close = 106

	state := Analyze(candles)
	if !state.BOSDetected {
		t.Fatal("Analyze() did not detect break of structure")
	}
	if state.BOSDirection != models.TrendBullish {
		t.Errorf("BOS direction = %v, want BULLISH", state.BOSDirection)
	}
}

func TestAnalyzeNoBOSWithOneSwingPerSide(t *testing.T) {
	candles := flatSeries(30, 100)
	spikeHigh(candles, 5, 5)
	spikeLow(candles, 10, 5)
	candles[29].Close = 120

	state := Analyze(candles)
	if state.BOSDetected {
		t.Error("Analyze() detected BOS with a single swing per side")
	}
}

func TestIdentifyLiquidityZones(t *testing.T) {
	candles := flatSeries(40, 100)
	candles[30].High = 110 // Inside the 24-candle window
	candles[25].Low = 90
	// The latest candle is excluded from the PDH/PDL scan
	candles[39].High = 200
	candles[39].Low = 1

	zones := IdentifyLiquidityZones(candles)

	var pdh, pdl *models.LiquidityZone
	for i := range zones {
		switch zones[i].Type {
		case models.ZonePDH:
			pdh = &zones[i]
		case models.ZonePDL:
			pdl = &zones[i]
		}
	}

	if pdh == nil || pdl == nil {
		t.Fatalf("IdentifyLiquidityZones() missing PDH/PDL in %+v", zones)
	}
	if pdh.Price != 110 {
		t.Errorf("PDH = %v, want 110", pdh.Price)
	}
	if pdl.Price != 90 {
		t.Errorf("PDL = %v, want 90", pdl.Price)
	}
	if pdh.Strength != "HIGH" || pdl.Strength != "HIGH" {
		t.Errorf("PDH/PDL strength = %s/%s, want HIGH/HIGH", pdh.Strength, pdl.Strength)
	}
}

func TestIdentifyLiquidityZonesShortSeries(t *testing.T) {
	zones := IdentifyLiquidityZones(flatSeries(10, 100))
	for _, z := range zones {
		if z.Type == models.ZonePDH || z.Type == models.ZonePDL {
			t.Errorf("unexpected %s zone with fewer than 25 candles", z.Type)
		}
	}
}

func flatSeries(n int, base float64) []models.Candle {
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{Open: base, High: base + 1, Low: base - 1, Close: base}
	}
	return candles
}

func spikeHigh(candles []models.Candle, i int, size float64) {
	candles[i].High += size
}

func spikeLow(candles []models.Candle, i int, size float64) {
	candles[i].Low -= size
}
