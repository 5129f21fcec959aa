package indicators

import (
	"math"
	"testing"

	"github.com/Nixiestone/smcbot/models"
)

func TestCalculateSMA(t *testing.T) {
	tests := []struct {
		name     string
		closes   []float64
		period   int
		expected float64
	}{
		{
			name:     "Average of last five",
			closes:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			period:   5,
			expected: 8,
		},
		{
			name:     "Not enough data",
			closes:   []float64{1, 2},
			period:   5,
			expected: 0,
		},
		{
			name:     "Zero period",
			closes:   []float64{1, 2, 3},
			period:   0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateSMA(candlesFromCloses(tt.closes), tt.period)
			if result != tt.expected {
				t.Errorf("CalculateSMA() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestCalculateEMA(t *testing.T) {
	// Seed is the SMA of the first two closes, then one smoothing step:
	// seed 1.5, multiplier 2/3, ema = 1.5 + (3-1.5)*2/3 = 2.5
	result := CalculateEMA(candlesFromCloses([]float64{1, 2, 3}), 2)
	if math.Abs(result-2.5) > 1e-9 {
		t.Errorf("CalculateEMA() = %v, want 2.5", result)
	}
}

func TestCalculateEMAShortSeries(t *testing.T) {
	result := CalculateEMA(candlesFromCloses([]float64{1.5, 2.5}), 10)
	if result != 2.5 {
		t.Errorf("CalculateEMA() with short series = %v, want last close 2.5", result)
	}
}

func TestCalculateRSI(t *testing.T) {
	tests := []struct {
		name     string
		closes   []float64
		period   int
		expected float64
	}{
		{
			name:     "All gains",
			closes:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			period:   5,
			expected: 100,
		},
		{
			name:     "Not enough data",
			closes:   []float64{1, 2},
			period:   14,
			expected: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateRSI(candlesFromCloses(tt.closes), tt.period)
			if result != tt.expected {
				t.Errorf("CalculateRSI() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestCalculateATR(t *testing.T) {
	// Constant 2-point range with no gaps keeps the true range at 2
	candles := make([]models.Candle, 20)
	for i := range candles {
		candles[i] = models.Candle{Open: 100, High: 101, Low: 99, Close: 100}
	}

	result := CalculateATR(candles, 14)
	if math.Abs(result-2) > 1e-9 {
		t.Errorf("CalculateATR() = %v, want 2", result)
	}
}

func TestCalculateVolumeRatio(t *testing.T) {
	t.Run("Short series defaults to one", func(t *testing.T) {
		if r := CalculateVolumeRatio(candlesFromCloses([]float64{1, 2, 3})); r != 1.0 {
			t.Errorf("CalculateVolumeRatio() = %v, want 1.0", r)
		}
	})

	t.Run("Double volume on latest candle", func(t *testing.T) {
		candles := make([]models.Candle, 21)
		for i := range candles {
			candles[i] = models.Candle{Close: 100, Volume: 1000}
		}
		candles[20].Volume = 2000

		if r := CalculateVolumeRatio(candles); math.Abs(r-2.0) > 1e-9 {
			t.Errorf("CalculateVolumeRatio() = %v, want 2.0", r)
		}
	})
}

func TestCalculateVolatility(t *testing.T) {
	t.Run("Short series is medium", func(t *testing.T) {
		if v := CalculateVolatility(candlesFromCloses([]float64{1, 2, 3})); v != "MEDIUM" {
			t.Errorf("CalculateVolatility() = %v, want MEDIUM", v)
		}
	})

	t.Run("Calm tail after wild history is low", func(t *testing.T) {
		var closes []float64
		price := 100.0
		for i := 0; i < 80; i++ {
			if i%2 == 0 {
				price *= 1.05
			} else {
				price *= 0.95
			}
			closes = append(closes, price)
		}
		for i := 0; i < 25; i++ {
			closes = append(closes, price)
		}

		if v := CalculateVolatility(candlesFromCloses(closes)); v != "LOW" {
			t.Errorf("CalculateVolatility() = %v, want LOW", v)
		}
	})
}

func TestCalculateADXTrendingMarket(t *testing.T) {
	// Strictly rising highs and lows leave all directional movement on
	// the plus side, pinning DX at 100
	candles := make([]models.Candle, 60)
	for i := range candles {
		base := 100 + float64(i)
		candles[i] = models.Candle{Open: base, High: base + 1, Low: base - 1, Close: base + 0.5}
	}

	adx, plusDI, minusDI := CalculateADX(candles, 14)
	if adx < 90 {
		t.Errorf("CalculateADX() adx = %v, want >= 90 for a pure trend", adx)
	}
	if plusDI <= minusDI {
		t.Errorf("CalculateADX() plusDI %v should exceed minusDI %v", plusDI, minusDI)
	}
}

func candlesFromCloses(closes []float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return candles
}
