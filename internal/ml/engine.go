package ml

import (
	"math"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixiestone/smcbot/models"
)

// Sample is one closed trade in the training ledger.
type Sample struct {
	Features []float64
	Won      bool
}

const (
	trainEpochs       = 300
	trainLearningRate = 0.1
)

// Engine serves confidence scores and retrains a logistic model from
// the closed-trade ledger once enough samples exist. Scoring reads the
// current model through an atomic pointer; retraining builds a fresh
// scorer and swaps it in whole.
type Engine struct {
	current   atomic.Pointer[scorerBox]
	threshold int
	log       zerolog.Logger
}

type scorerBox struct {
	scorer models.ConfidenceScorer
}

// NewEngine starts with the rule-based baseline scorer. threshold is
// the minimum closed-trade count before the learned model takes over.
func NewEngine(threshold int) *Engine {
	e := &Engine{
		threshold: threshold,
		log:       log.With().Str("component", "ml").Logger(),
	}
	e.current.Store(&scorerBox{scorer: RuleScorer{}})
	return e
}

// Score delegates to whichever model is currently installed.
func (e *Engine) Score(state *models.MarketState) float64 {
	return e.current.Load().scorer.Score(state)
}

// Retrain fits a logistic model on the ledger and installs it. Below
// the sample threshold, or with a single-class ledger, the currently
// installed scorer stays.
func (e *Engine) Retrain(samples []Sample) {
	if len(samples) < e.threshold {
		e.log.Debug().Int("samples", len(samples)).Int("threshold", e.threshold).
			Msg("not enough closed trades to train")
		return
	}

	var wins int
	for _, s := range samples {
		if s.Won {
			wins++
		}
	}
	if wins == 0 || wins == len(samples) {
		e.log.Debug().Int("samples", len(samples)).Msg("single-class ledger, keeping current model")
		return
	}

	model := fitLogistic(samples)
	e.current.Store(&scorerBox{scorer: model})
	e.log.Info().Int("samples", len(samples)).Int("wins", wins).Msg("learned scorer installed")
}

// LearnedScorer is a trained logistic regression over the feature
// vector. Immutable after construction.
type LearnedScorer struct {
	bias    float64
	weights []float64
}

// Score maps the weighted feature sum through a sigmoid to [0,100].
func (s *LearnedScorer) Score(state *models.MarketState) float64 {
	features := FeatureVector(state)
	z := s.bias
	for i, w := range s.weights {
		if i < len(features) {
			z += w * features[i]
		}
	}
	return sigmoid(z) * 100
}

// fitLogistic runs plain batch gradient descent. The ledger is small
// enough that nothing fancier is warranted.
func fitLogistic(samples []Sample) *LearnedScorer {
	weights := make([]float64, FeatureCount)
	bias := 0.0
	n := float64(len(samples))

	for epoch := 0; epoch < trainEpochs; epoch++ {
		gradB := 0.0
		gradW := make([]float64, FeatureCount)

		for _, s := range samples {
			z := bias
			for i, w := range weights {
				if i < len(s.Features) {
					z += w * s.Features[i]
				}
			}
			pred := sigmoid(z)
			target := 0.0
			if s.Won {
				target = 1.0
			}
			err := pred - target

			gradB += err
			for i := range gradW {
				if i < len(s.Features) {
					gradW[i] += err * s.Features[i]
				}
			}
		}

		bias -= trainLearningRate * gradB / n
		for i := range weights {
			weights[i] -= trainLearningRate * gradW[i] / n
		}
	}

	return &LearnedScorer{bias: bias, weights: weights}
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
