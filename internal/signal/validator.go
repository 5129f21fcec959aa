package signal

import (
	"github.com/Nixiestone/smcbot/models"
)

// Setup is a validated trade opportunity derived from one market
// state snapshot.
type Setup struct {
	Valid     bool
	Type      models.SetupType
	Direction models.Direction
	Reasons   []string
}

// DetermineDirection maps the aggregated market bias to a trade side.
// A NEUTRAL bias yields no direction and no setup.
func DetermineDirection(state *models.MarketState) (models.Direction, bool) {
	switch {
	case state.Bias.IsBullish():
		return models.DirectionBuy, true
	case state.Bias.IsBearish():
		return models.DirectionSell, true
	default:
		return "", false
	}
}

// ValidateSetup checks whether the snapshot contains a tradeable
// confluence in the bias direction. A setup needs both momentum
// triggers: a liquidity sweep and a displacement candle, agreeing with
// each other and with the bias, plus at least one point of interest.
// Zone types rank FVG+OB confluence ahead of a lone order block or
// gap; whether the two zones actually overlap only matters later, when
// the entry zone is picked.
func ValidateSetup(state *models.MarketState) Setup {
	direction, ok := DetermineDirection(state)
	if !ok {
		return Setup{}
	}

	wantTrend := models.TrendBullish
	if direction == models.DirectionSell {
		wantTrend = models.TrendBearish
	}

	sweep := state.LiquiditySweep
	displacement := state.M1Displacement
	if !sweep.Detected || !displacement.Detected {
		return Setup{}
	}
	if sweep.Type != displacement.Direction {
		return Setup{}
	}
	if sweep.Type != wantTrend {
		return Setup{}
	}

	setup := Setup{
		Direction: direction,
		Reasons:   []string{"liquidity sweep confirmed", "displacement confirmed"},
	}

	ob := latestOrderBlock(state.OrderBlocks, wantTrend)
	fvg := latestFVG(state.FVGs, wantTrend)

	switch {
	case ob != nil && fvg != nil:
		setup.Type = models.SetupFVGOBConfluence
		setup.Reasons = append(setup.Reasons, "order block + fair value gap confluence")
	case ob != nil:
		setup.Type = models.SetupOrderBlock
		setup.Reasons = append(setup.Reasons, "order block entry zone")
	case fvg != nil:
		setup.Type = models.SetupFVGOnly
		setup.Reasons = append(setup.Reasons, "fair value gap entry zone")
	default:
		return Setup{}
	}

	setup.Valid = true
	return setup
}

func latestOrderBlock(blocks []models.OrderBlock, want models.Trend) *models.OrderBlock {
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i].Type == want {
			return &blocks[i]
		}
	}
	return nil
}

func latestFVG(fvgs []models.FVG, want models.Trend) *models.FVG {
	for i := len(fvgs) - 1; i >= 0; i-- {
		if fvgs[i].Type == want {
			return &fvgs[i]
		}
	}
	return nil
}

func zonesOverlap(aLow, aHigh, bLow, bHigh float64) bool {
	return aLow <= bHigh && bLow <= aHigh
}
