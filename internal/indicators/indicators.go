package indicators

import (
	"math"

	"github.com/Nixiestone/smcbot/models"
)

// CalculateEMA returns the exponential moving average of closes over
// the given period.
func CalculateEMA(candles []models.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	if len(candles) < period {
		return candles[len(candles)-1].Close // Return last close if not enough data
	}

	// Seed with the simple average of the first period closes
	var sum float64
	for i := 0; i < period; i++ {
		sum += candles[i].Close
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(candles); i++ {
		ema = (candles[i].Close-ema)*multiplier + ema
	}

	return ema
}

// CalculateSMA returns the simple moving average of closes over the
// last period candles.
func CalculateSMA(candles []models.Candle, period int) float64 {
	if len(candles) < period || period <= 0 {
		return 0
	}
	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	return sum / float64(period)
}

// CalculateATR returns the average true range over the given period.
func CalculateATR(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 0
	}

	var trueRanges []float64
	for i := 1; i < len(candles); i++ {
		// True Range is the greatest of:
		// 1. Current High - Current Low
		// 2. Abs(Current High - Previous Close)
		// 3. Abs(Current Low - Previous Close)
		highLow := candles[i].High - candles[i].Low
		highPrevClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowPrevClose := math.Abs(candles[i].Low - candles[i-1].Close)

		trueRanges = append(trueRanges, math.Max(highLow, math.Max(highPrevClose, lowPrevClose)))
	}

	periodToUse := period
	if len(trueRanges) < period {
		periodToUse = len(trueRanges)
	}

	var sum float64
	for i := len(trueRanges) - periodToUse; i < len(trueRanges); i++ {
		sum += trueRanges[i]
	}
	return sum / float64(periodToUse)
}

// CalculateRSI returns Wilder's relative strength index.
func CalculateRSI(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 50.0 // Default value if not enough data
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	// Wilder smoothing for the rest of the series
	for i := period + 1; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			avgGain = (avgGain*float64(period-1) + change) / float64(period)
			avgLoss = (avgLoss * float64(period-1)) / float64(period)
		} else {
			avgGain = (avgGain * float64(period-1)) / float64(period)
			avgLoss = (avgLoss*float64(period-1) - change) / float64(period)
		}
	}

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// CalculateADX returns the ADX value with +DI and -DI over the period.
func CalculateADX(candles []models.Candle, period int) (adx, plusDI, minusDI float64) {
	if len(candles) < period*2 {
		return 0, 0, 0 // Not enough data
	}

	var plusDM, minusDM, trueRange []float64
	for i := 1; i < len(candles); i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low

		pDM := 0.0
		if upMove > downMove && upMove > 0 {
			pDM = upMove
		}
		plusDM = append(plusDM, pDM)

		mDM := 0.0
		if downMove > upMove && downMove > 0 {
			mDM = downMove
		}
		minusDM = append(minusDM, mDM)

		tr1 := candles[i].High - candles[i].Low
		tr2 := math.Abs(candles[i].High - candles[i-1].Close)
		tr3 := math.Abs(candles[i].Low - candles[i-1].Close)
		trueRange = append(trueRange, math.Max(tr1, math.Max(tr2, tr3)))
	}

	// Wilder smoothing of DM and TR
	smoothedPlusDM := sum(plusDM[:period])
	smoothedMinusDM := sum(minusDM[:period])
	smoothedTR := sum(trueRange[:period])

	var dxValues []float64
	for i := period; i < len(trueRange); i++ {
		smoothedPlusDM = smoothedPlusDM - (smoothedPlusDM / float64(period)) + plusDM[i]
		smoothedMinusDM = smoothedMinusDM - (smoothedMinusDM / float64(period)) + minusDM[i]
		smoothedTR = smoothedTR - (smoothedTR / float64(period)) + trueRange[i]

		if smoothedTR == 0 {
			continue
		}
		pDI := 100 * smoothedPlusDM / smoothedTR
		mDI := 100 * smoothedMinusDM / smoothedTR
		plusDI, minusDI = pDI, mDI

		if pDI+mDI > 0 {
			dxValues = append(dxValues, 100*math.Abs(pDI-mDI)/(pDI+mDI))
		}
	}

	if len(dxValues) < period {
		return 0, plusDI, minusDI
	}

	adx = sum(dxValues[len(dxValues)-period:]) / float64(period)
	return adx, plusDI, minusDI
}

// CalculateVolatility classifies recent close-to-close volatility
// against the full-series baseline as LOW, MEDIUM or HIGH.
func CalculateVolatility(candles []models.Candle) string {
	if len(candles) < 21 {
		return "MEDIUM"
	}

	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		if candles[i-1].Close != 0 {
			returns = append(returns, (candles[i].Close-candles[i-1].Close)/candles[i-1].Close)
		}
	}

	currentVol := stddev(returns[len(returns)-20:])
	avgVol := stddev(returns)

	switch {
	case avgVol == 0:
		return "MEDIUM"
	case currentVol > 1.5*avgVol:
		return "HIGH"
	case currentVol < 0.5*avgVol:
		return "LOW"
	default:
		return "MEDIUM"
	}
}

// CalculateVolumeRatio compares the last candle's volume to the
// trailing 20-candle average.
func CalculateVolumeRatio(candles []models.Candle) float64 {
	if len(candles) < 21 {
		return 1.0
	}

	current := float64(candles[len(candles)-1].Volume)
	var avg float64
	for i := len(candles) - 21; i < len(candles)-1; i++ {
		avg += float64(candles[i].Volume)
	}
	avg /= 20

	if avg <= 0 {
		return 1.0
	}
	return current / avg
}

// AverageBody returns the mean absolute body size of candles[from:to).
func AverageBody(candles []models.Candle, from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to > len(candles) {
		to = len(candles)
	}
	if to <= from {
		return 0
	}
	var total float64
	for i := from; i < to; i++ {
		total += candles[i].Body()
	}
	return total / float64(to-from)
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := sum(values) / float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}
