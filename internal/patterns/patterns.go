package patterns

import (
	"github.com/Nixiestone/smcbot/internal/indicators"
	"github.com/Nixiestone/smcbot/models"
)

const (
	maxFVGsKept        = 5
	maxOrderBlocksKept = 10
	obSearchWindow     = 5
	bodyAvgWindow      = 20
)

// DetectFVGs scans a series for three-candle fair value gaps, marks
// gaps later re-entered by price as mitigated, and returns the most
// recent unmitigated ones (capped at 5). minSize is the configured
// gap threshold in tenths of a pip, scaled by the instrument price.
func DetectFVGs(candles []models.Candle, minSize float64) []models.FVG {
	if len(candles) < 3 {
		return nil
	}

	var fvgs []models.FVG
	for i := 2; i < len(candles); i++ {
		threshold := minSize * candles[i].Close * 0.0001

		// Bullish gap: current low clears the high two candles back
		if candles[i].Low > candles[i-2].High {
			size := candles[i].Low - candles[i-2].High
			if size >= threshold {
				fvgs = append(fvgs, models.FVG{
					Type:  models.TrendBullish,
					Upper: candles[i].Low,
					Lower: candles[i-2].High,
					Size:  size,
					Index: i,
				})
			}
		} else if candles[i].High < candles[i-2].Low {
			size := candles[i-2].Low - candles[i].High
			if size >= threshold {
				fvgs = append(fvgs, models.FVG{
					Type:  models.TrendBearish,
					Upper: candles[i-2].Low,
					Lower: candles[i].High,
					Size:  size,
					Index: i,
				})
			}
		}
	}

	// Mitigation pass: any later candle trading back into the gap
	// kills it permanently.
	for idx := range fvgs {
		for j := fvgs[idx].Index + 1; j < len(candles); j++ {
			if fvgs[idx].Type == models.TrendBullish {
				if candles[j].Low <= fvgs[idx].Upper {
					fvgs[idx].Mitigated = true
					break
				}
			} else {
				if candles[j].High >= fvgs[idx].Lower {
					fvgs[idx].Mitigated = true
					break
				}
			}
		}
	}

	var active []models.FVG
	for _, fvg := range fvgs {
		if !fvg.Mitigated {
			active = append(active, fvg)
		}
	}
	if len(active) > maxFVGsKept {
		active = active[len(active)-maxFVGsKept:]
	}
	return active
}

// DetectOrderBlocks finds the last opposite-colored candle preceding
// each displacement candle (body > bodyMultiplier × trailing average).
// Returns the most recent blocks, capped at 10.
func DetectOrderBlocks(candles []models.Candle, lookback int, bodyMultiplier float64) []models.OrderBlock {
	if len(candles) <= lookback {
		return nil
	}

	var blocks []models.OrderBlock
	for i := lookback; i < len(candles); i++ {
		avgBody := indicators.AverageBody(candles, i-bodyAvgWindow, i)
		if avgBody <= 0 {
			continue
		}

		body := candles[i].Body()
		if body <= bodyMultiplier*avgBody {
			continue
		}

		if candles[i].Bullish() {
			// Last bearish candle before the displacement
			for j := i - 1; j >= maxInt(0, i-obSearchWindow); j-- {
				if !candles[j].Bullish() && candles[j].Close != candles[j].Open {
					blocks = append(blocks, models.OrderBlock{
						Type:     models.TrendBullish,
						Upper:    candles[j].High,
						Lower:    candles[j].Low,
						Index:    j,
						Strength: body / avgBody,
					})
					break
				}
			}
		} else if candles[i].Close < candles[i].Open {
			// Last bullish candle before the displacement
			for j := i - 1; j >= maxInt(0, i-obSearchWindow); j-- {
				if candles[j].Bullish() {
					blocks = append(blocks, models.OrderBlock{
						Type:     models.TrendBearish,
						Upper:    candles[j].High,
						Lower:    candles[j].Low,
						Index:    j,
						Strength: body / avgBody,
					})
					break
				}
			}
		}
	}

	if len(blocks) > maxOrderBlocksKept {
		blocks = blocks[len(blocks)-maxOrderBlocksKept:]
	}
	return blocks
}

// CheckDisplacement tests whether the latest candle's body exceeds
// factor × the trailing 20-candle average body.
func CheckDisplacement(candles []models.Candle, factor float64) models.Displacement {
	if len(candles) < bodyAvgWindow {
		return models.Displacement{}
	}

	last := candles[len(candles)-1]
	avgBody := indicators.AverageBody(candles, len(candles)-bodyAvgWindow, len(candles)-1)
	if avgBody <= 0 {
		return models.Displacement{}
	}

	body := last.Body()
	if body <= factor*avgBody {
		return models.Displacement{}
	}

	direction := models.TrendBearish
	if last.Bullish() {
		direction = models.TrendBullish
	}
	return models.Displacement{
		Detected:  true,
		Direction: direction,
		Size:      body,
		Strength:  body / avgBody,
	}
}

// CheckLiquiditySweep detects whether the last 5 candles pierced a
// liquidity zone and the current close reclaimed it. A swept low
// reclaimed upward is a bullish sweep; a swept high reclaimed
// downward is bearish.
func CheckLiquiditySweep(candles []models.Candle, zones []models.LiquidityZone) models.LiquiditySweep {
	if len(zones) == 0 || len(candles) < 5 {
		return models.LiquiditySweep{}
	}

	recentHigh := candles[len(candles)-5].High
	recentLow := candles[len(candles)-5].Low
	for i := len(candles) - 5; i < len(candles); i++ {
		if candles[i].High > recentHigh {
			recentHigh = candles[i].High
		}
		if candles[i].Low < recentLow {
			recentLow = candles[i].Low
		}
	}
	currentPrice := candles[len(candles)-1].Close

	for _, zone := range zones {
		switch {
		case recentLow < zone.Price && zone.Price < currentPrice:
			if zone.Type == models.ZonePDL || zone.Type == models.ZoneSwingLow {
				return models.LiquiditySweep{
					Detected:  true,
					Type:      models.TrendBullish,
					Level:     zone.Price,
					LevelType: zone.Type,
				}
			}
		case recentHigh > zone.Price && zone.Price > currentPrice:
			if zone.Type == models.ZonePDH || zone.Type == models.ZoneSwingHigh {
				return models.LiquiditySweep{
					Detected:  true,
					Type:      models.TrendBearish,
					Level:     zone.Price,
					LevelType: zone.Type,
				}
			}
		}
	}

	return models.LiquiditySweep{}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
