package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixiestone/smcbot/models"
)

func TestRuleScorerBaseline(t *testing.T) {
	score := RuleScorer{}.Score(&models.MarketState{})
	assert.Equal(t, 50.0, score)
}

func TestRuleScorerFullConfluenceCapped(t *testing.T) {
	state := &models.MarketState{
		Bias:         models.TrendBullish,
		TrendQuality: "excellent",
		InKillZone:   true,
		MTFStructure: models.StructureState{
			BOSDetected:  true,
			BOSDirection: models.TrendBullish,
		},
		OrderBlocks: []models.OrderBlock{{Type: models.TrendBullish, Lower: 1, Upper: 2}},
		FVGs:        []models.FVG{{Type: models.TrendBullish, Lower: 1, Upper: 2}},
	}

	// 50 + 20 + 10 + 15 + 5 overflows the cap
	assert.Equal(t, 95.0, RuleScorer{}.Score(state))
}

func TestRuleScorerPartials(t *testing.T) {
	t.Run("Good trend only", func(t *testing.T) {
		state := &models.MarketState{TrendQuality: "good"}
		assert.Equal(t, 60.0, RuleScorer{}.Score(state))
	})

	t.Run("Single zone", func(t *testing.T) {
		state := &models.MarketState{
			Bias:        models.TrendBullish,
			OrderBlocks: []models.OrderBlock{{Type: models.TrendBullish}},
		}
		assert.Equal(t, 58.0, RuleScorer{}.Score(state))
	})

	t.Run("Opposite-direction break adds nothing", func(t *testing.T) {
		state := &models.MarketState{
			Bias: models.TrendBullish,
			MTFStructure: models.StructureState{
				BOSDetected:  true,
				BOSDirection: models.TrendBearish,
			},
		}
		assert.Equal(t, 50.0, RuleScorer{}.Score(state))
	})
}

func TestFeatureVectorWidth(t *testing.T) {
	features := FeatureVector(&models.MarketState{
		TrendStrength: 80,
		RSI:           55,
		VolumeRatio:   1.4,
		InKillZone:    true,
	})

	require.Len(t, features, FeatureCount)
	assert.InDelta(t, 0.8, features[0], 1e-9)
	assert.InDelta(t, 0.55, features[8], 1e-9)
	assert.Equal(t, 1.0, features[10])
	for _, f := range features {
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)
	}
}

func TestEngineKeepsBaselineBelowThreshold(t *testing.T) {
	engine := NewEngine(20)
	state := &models.MarketState{TrendQuality: "good"}

	before := engine.Score(state)
	engine.Retrain(makeSamples(5, 5))
	assert.Equal(t, before, engine.Score(state), "model must not swap under the sample threshold")
}

func TestEngineKeepsBaselineOnSingleClassLedger(t *testing.T) {
	engine := NewEngine(10)
	state := &models.MarketState{TrendQuality: "good"}

	before := engine.Score(state)
	engine.Retrain(makeSamples(30, 0))
	assert.Equal(t, before, engine.Score(state))
}

func TestEngineLearnsSeparableLedger(t *testing.T) {
	engine := NewEngine(10)
	engine.Retrain(makeSamples(20, 20))

	winLike := &models.MarketState{TrendStrength: 100}
	lossLike := &models.MarketState{TrendStrength: 0}

	winScore := engine.Score(winLike)
	lossScore := engine.Score(lossLike)

	assert.Greater(t, winScore, lossScore,
		"trained model should rank the winning profile above the losing one")
	assert.GreaterOrEqual(t, winScore, 0.0)
	assert.LessOrEqual(t, winScore, 100.0)
}

// makeSamples builds a ledger separable on the first feature: winners
// carry 1.0 there, losers 0.0.
func makeSamples(wins, losses int) []Sample {
	var samples []Sample
	for i := 0; i < wins; i++ {
		f := make([]float64, FeatureCount)
		f[0] = 1.0
		samples = append(samples, Sample{Features: f, Won: true})
	}
	for i := 0; i < losses; i++ {
		samples = append(samples, Sample{Features: make([]float64, FeatureCount), Won: false})
	}
	return samples
}
