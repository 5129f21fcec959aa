package structure

import (
	"github.com/Nixiestone/smcbot/models"
)

const maxSwingsKept = 5

// Analyze identifies swing highs/lows and break-of-structure for a
// candle series. A series shorter than 5 candles yields an empty
// state, never an error.
func Analyze(candles []models.Candle) models.StructureState {
	var state models.StructureState
	if len(candles) < 5 {
		return state
	}

	var highs, lows []models.SwingPoint
	for i := 2; i < len(candles)-2; i++ {
		// Swing high: strictly above the two candles on each side
		if candles[i].High > candles[i-1].High &&
			candles[i].High > candles[i-2].High &&
			candles[i].High > candles[i+1].High &&
			candles[i].High > candles[i+2].High {
			highs = append(highs, models.SwingPoint{Price: candles[i].High, Index: i, Kind: models.SwingHigh})
		}

		// Swing low: strictly below the two candles on each side
		if candles[i].Low < candles[i-1].Low &&
			candles[i].Low < candles[i-2].Low &&
			candles[i].Low < candles[i+1].Low &&
			candles[i].Low < candles[i+2].Low {
			lows = append(lows, models.SwingPoint{Price: candles[i].Low, Index: i, Kind: models.SwingLow})
		}
	}

	// BOS: latest close breaking the second-most-recent swing level.
	// Needs at least two swings on both sides to be meaningful.
	lastClose := candles[len(candles)-1].Close
	if len(highs) >= 2 && len(lows) >= 2 {
		switch {
		case lastClose > highs[len(highs)-2].Price:
			state.BOSDetected = true
			state.BOSDirection = models.TrendBullish
		case lastClose < lows[len(lows)-2].Price:
			state.BOSDetected = true
			state.BOSDirection = models.TrendBearish
		}
	}

	state.SwingHighs = tail(highs, maxSwingsKept)
	state.SwingLows = tail(lows, maxSwingsKept)
	return state
}

// IdentifyLiquidityZones derives the key liquidity levels from a
// series: previous-day high/low over the last 24 candles (excluding
// the current one) and the three most recent swing extremes.
func IdentifyLiquidityZones(candles []models.Candle) []models.LiquidityZone {
	var zones []models.LiquidityZone

	if len(candles) > 24 {
		pdh := candles[len(candles)-24].High
		pdl := candles[len(candles)-24].Low
		for i := len(candles) - 24; i < len(candles)-1; i++ {
			if candles[i].High > pdh {
				pdh = candles[i].High
			}
			if candles[i].Low < pdl {
				pdl = candles[i].Low
			}
		}
		zones = append(zones,
			models.LiquidityZone{Type: models.ZonePDH, Price: pdh, Strength: "HIGH"},
			models.LiquidityZone{Type: models.ZonePDL, Price: pdl, Strength: "HIGH"},
		)
	}

	state := Analyze(candles)
	for _, sp := range tail(state.SwingHighs, 3) {
		zones = append(zones, models.LiquidityZone{Type: models.ZoneSwingHigh, Price: sp.Price, Strength: "MEDIUM"})
	}
	for _, sp := range tail(state.SwingLows, 3) {
		zones = append(zones, models.LiquidityZone{Type: models.ZoneSwingLow, Price: sp.Price, Strength: "MEDIUM"})
	}

	return zones
}

func tail(points []models.SwingPoint, n int) []models.SwingPoint {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}
