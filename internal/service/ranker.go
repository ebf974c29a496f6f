package service

import (
	"fmt"
	"math"
	"sort"

	"intent-engine/internal/model"
)

// ScoreResult is the linear scorer output for one message
type ScoreResult struct {
	Scores     []model.ClassScore // descending by score, ties in class order
	Top        model.ClassScore
	Confidence float64 // softmax probability of Top
}

// LinearScorer evaluates the multinomial linear model
type LinearScorer struct {
	params *model.ModelParams
}

// NewLinearScorer creates a scorer over validated model parameters
func NewLinearScorer(params *model.ModelParams) *LinearScorer {
	return &LinearScorer{params: params}
}

// Score computes intercept[k] + sum_i weights[i]*coefficients[k][i] for every class,
// ranks the classes and derives the softmax confidence of the top one.
func (s *LinearScorer) Score(weights []float64) (*ScoreResult, error) {
	n := s.params.NumClasses()
	if n == 0 {
		return nil, fmt.Errorf("model has no classes")
	}

	scores := make([]model.ClassScore, n)
	for k, class := range s.params.Classes {
		row := s.params.Coefficients[k]
		if len(row) != len(weights) {
			return nil, fmt.Errorf("class %s has %d coefficients for %d features", class, len(row), len(weights))
		}

		score := s.params.Intercept[k]
		for i, w := range weights {
			if w != 0 {
				score += w * row[i]
			}
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, fmt.Errorf("class %s produced a non-finite score", class)
		}
		scores[k] = model.ClassScore{Class: class, Score: score}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return &ScoreResult{
		Scores:     scores,
		Top:        scores[0],
		Confidence: softmaxTop(scores),
	}, nil
}

// softmaxTop returns exp(s_top) / sum_k exp(s_k) for scores sorted descending.
// The maximum is subtracted before exponentiating, which leaves the ratio unchanged.
func softmaxTop(sorted []model.ClassScore) float64 {
	maxScore := sorted[0].Score
	sum := 0.0
	for _, cs := range sorted {
		sum += math.Exp(cs.Score - maxScore)
	}
	confidence := 1.0 / sum
	if confidence > 1 {
		return 1
	}
	return confidence
}
