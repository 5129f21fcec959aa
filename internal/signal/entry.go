package signal

import (
	"fmt"
	"math"

	"github.com/Nixiestone/smcbot/models"
)

// limitRetracement is how far into the entry zone a pending limit
// order is placed, measured from the protective edge.
const limitRetracement = 0.3

// Distance thresholds relative to the zone height: closer than a
// quarter height on the retrace side keeps a limit order, further than
// half a height beyond the zone always waits for a pullback.
const (
	nearZoneFraction = 0.25
	farZoneFraction  = 0.5
)

// Calculator derives entry, stop and target prices for a validated
// setup.
type Calculator struct {
	MinRiskReward      float64
	SLBufferPoints     float64
	StrongDisplacement float64
}

// Compute picks the entry zone for the direction (confluence overlap
// first, then order block, then fair value gap), chooses the order
// type from where price sits relative to the zone and how aggressive
// the move is, and projects the stop and target. Returns an error when
// no zone exists or the resulting geometry cannot reach the minimum
// risk-reward.
func (c *Calculator) Compute(state *models.MarketState, setup Setup, info models.SymbolInfo) (models.EntryLevels, error) {
	var levels models.EntryLevels
	if info.Point <= 0 {
		return levels, fmt.Errorf("symbol point size missing for %s", state.Symbol)
	}

	price := state.CurrentPrice
	zoneLower, zoneUpper, err := entryZone(state, setup.Direction)
	if err != nil {
		return levels, err
	}

	// Strong displacement or a high-volatility regime justifies taking
	// the market price instead of waiting for a retrace.
	immediate := state.M1Displacement.Strength > c.StrongDisplacement ||
		state.Volatility == "HIGH"

	levels.EntryType, levels.Entry = entryForZone(setup.Direction, price, zoneLower, zoneUpper, immediate)

	buffer := c.SLBufferPoints * info.Point
	if setup.Direction == models.DirectionBuy {
		levels.StopLoss = zoneLower - buffer
	} else {
		levels.StopLoss = zoneUpper + buffer
	}

	levels.SLPips = math.Abs(levels.Entry-levels.StopLoss) / info.Point
	if levels.SLPips <= 0 {
		return levels, fmt.Errorf("degenerate stop distance for %s", state.Symbol)
	}

	levels.TPPips = levels.SLPips * c.MinRiskReward
	if setup.Direction == models.DirectionBuy {
		levels.TakeProfit = levels.Entry + levels.TPPips*info.Point
	} else {
		levels.TakeProfit = levels.Entry - levels.TPPips*info.Point
	}

	levels.RiskReward = levels.TPPips / levels.SLPips
	if levels.RiskReward < c.MinRiskReward {
		return levels, fmt.Errorf("risk-reward %.2f below minimum %.2f", levels.RiskReward, c.MinRiskReward)
	}

	return levels, nil
}

// entryZone returns the price band the entry anchors to. The overlap
// of a matching order block and gap is the best anchor; with no
// overlap the order block alone outranks a lone gap.
func entryZone(state *models.MarketState, direction models.Direction) (float64, float64, error) {
	wantTrend := models.TrendBullish
	if direction == models.DirectionSell {
		wantTrend = models.TrendBearish
	}

	ob := latestOrderBlock(state.OrderBlocks, wantTrend)
	fvg := latestFVG(state.FVGs, wantTrend)

	if ob != nil && fvg != nil && zonesOverlap(ob.Lower, ob.Upper, fvg.Lower, fvg.Upper) {
		return math.Max(ob.Lower, fvg.Lower), math.Min(ob.Upper, fvg.Upper), nil
	}
	if ob != nil {
		return ob.Lower, ob.Upper, nil
	}
	if fvg != nil {
		return fvg.Lower, fvg.Upper, nil
	}
	return 0, 0, fmt.Errorf("no entry zone for %s", state.Symbol)
}

// entryForZone picks the order type and price. Inside the zone an
// immediate setup goes to market, otherwise a limit waits for the
// retrace deeper into the zone. Beyond the zone the distance rules
// apply: more than half a zone height away always means a limit back
// inside, while price still approaching the zone from the protective
// side switches to a stop at the near edge once the gap exceeds a
// quarter height.
func entryForZone(direction models.Direction, price, zoneLower, zoneUpper float64, immediate bool) (models.OrderType, float64) {
	height := zoneUpper - zoneLower

	if direction == models.DirectionBuy {
		limitEntry := zoneLower + limitRetracement*height
		switch {
		case price >= zoneLower && price <= zoneUpper:
			if immediate {
				return models.OrderMarket, price
			}
			return models.OrderBuyLimit, limitEntry
		case price > zoneUpper:
			if distance := price - zoneUpper; distance <= farZoneFraction*height && immediate {
				return models.OrderMarket, price
			}
			return models.OrderBuyLimit, limitEntry
		default:
			if distance := zoneLower - price; distance < nearZoneFraction*height {
				return models.OrderBuyLimit, limitEntry
			}
			return models.OrderBuyStop, zoneLower
		}
	}

	limitEntry := zoneUpper - limitRetracement*height
	switch {
	case price >= zoneLower && price <= zoneUpper:
		if immediate {
			return models.OrderMarket, price
		}
		return models.OrderSellLimit, limitEntry
	case price < zoneLower:
		if distance := zoneLower - price; distance <= farZoneFraction*height && immediate {
			return models.OrderMarket, price
		}
		return models.OrderSellLimit, limitEntry
	default:
		if distance := price - zoneUpper; distance < nearZoneFraction*height {
			return models.OrderSellLimit, limitEntry
		}
		return models.OrderSellStop, zoneUpper
	}
}
