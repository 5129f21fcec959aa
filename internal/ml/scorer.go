package ml

import (
	"math"

	"github.com/Nixiestone/smcbot/models"
)

// FeatureCount is the width of the model input vector.
const FeatureCount = 11

// FeatureVector flattens a market snapshot into the fixed-width input
// the scorers consume. All features are scaled to roughly [0,1].
func FeatureVector(state *models.MarketState) []float64 {
	f := make([]float64, FeatureCount)

	f[0] = state.TrendStrength / 100
	f[1] = boolFeature(state.HTFTrend.IsBullish() || state.HTFTrend.IsBearish())
	f[2] = boolFeature(state.MTFStructure.BOSDetected)
	f[3] = boolFeature(state.LTFStructure.BOSDetected)
	f[4] = math.Min(1, float64(len(state.FVGs))/5)
	f[5] = math.Min(1, float64(len(state.OrderBlocks))/10)
	f[6] = math.Min(1, state.M1Displacement.Strength/5)
	f[7] = boolFeature(state.LiquiditySweep.Detected)
	f[8] = state.RSI / 100
	f[9] = math.Min(1, state.VolumeRatio/3)
	f[10] = boolFeature(state.InKillZone)

	return f
}

// RuleScorer is the baseline confidence model used until enough closed
// trades exist to train a learned one. Stateless and concurrency-safe.
type RuleScorer struct{}

// Score starts at 50 and adds points for trend quality, an aligned
// intermediate break of structure, zone confluence and kill zone
// timing. Capped at 95 so no rule-based read ever looks certain.
func (RuleScorer) Score(state *models.MarketState) float64 {
	score := 50.0

	switch state.TrendQuality {
	case "excellent":
		score += 20
	case "good":
		score += 10
	}

	if state.MTFStructure.BOSDetected && alignedWithBias(state.MTFStructure.BOSDirection, state.Bias) {
		score += 10
	}

	hasOB := hasZone(state, true)
	hasFVG := hasZone(state, false)
	switch {
	case hasOB && hasFVG:
		score += 15
	case hasOB || hasFVG:
		score += 8
	}

	if state.InKillZone {
		score += 5
	}

	return math.Min(score, 95)
}

func alignedWithBias(direction models.Trend, bias models.Trend) bool {
	return (direction.IsBullish() && bias.IsBullish()) ||
		(direction.IsBearish() && bias.IsBearish())
}

func hasZone(state *models.MarketState, orderBlock bool) bool {
	want := models.TrendBullish
	if state.Bias.IsBearish() {
		want = models.TrendBearish
	}
	if orderBlock {
		for _, ob := range state.OrderBlocks {
			if ob.Type == want {
				return true
			}
		}
		return false
	}
	for _, fvg := range state.FVGs {
		if fvg.Type == want {
			return true
		}
	}
	return false
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
