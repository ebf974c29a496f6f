package service

import (
	"math"
	"testing"

	"intent-engine/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearScorer_Score(t *testing.T) {
	params := &model.ModelParams{
		Classes:   []model.IntentID{"a", "b", "c"},
		Intercept: []float64{0.5, 0, -1},
		Coefficients: [][]float64{
			{1, 0},
			{0, 2},
			{3, 3},
		},
	}

	result, err := NewLinearScorer(params).Score([]float64{1, 1})
	require.NoError(t, err)

	// a = 1.5, b = 2, c = 5
	require.Len(t, result.Scores, 3)
	assert.Equal(t, model.ClassScore{Class: "c", Score: 5}, result.Scores[0])
	assert.Equal(t, model.ClassScore{Class: "b", Score: 2}, result.Scores[1])
	assert.Equal(t, model.ClassScore{Class: "a", Score: 1.5}, result.Scores[2])
	assert.Equal(t, result.Scores[0], result.Top)

	want := math.Exp(5) / (math.Exp(5) + math.Exp(2) + math.Exp(1.5))
	assert.InDelta(t, want, result.Confidence, 1e-12)
}

func TestLinearScorer_TiesKeepClassOrder(t *testing.T) {
	params := &model.ModelParams{
		Classes:      []model.IntentID{"x", "y", "z", "w"},
		Intercept:    []float64{1, 2, 2, 1},
		Coefficients: [][]float64{{0}, {0}, {0}, {0}},
	}

	result, err := NewLinearScorer(params).Score([]float64{1})
	require.NoError(t, err)

	got := make([]model.IntentID, len(result.Scores))
	for i, cs := range result.Scores {
		got[i] = cs.Class
	}
	assert.Equal(t, []model.IntentID{"y", "z", "x", "w"}, got)
	assert.Equal(t, model.IntentID("y"), result.Top.Class)
}

func TestLinearScorer_LargeScoresDoNotOverflow(t *testing.T) {
	params := &model.ModelParams{
		Classes:      []model.IntentID{"a", "b"},
		Intercept:    []float64{1000, 999},
		Coefficients: [][]float64{{0}, {0}},
	}

	result, err := NewLinearScorer(params).Score([]float64{0})
	require.NoError(t, err)

	assert.InDelta(t, 1/(1+math.Exp(-1)), result.Confidence, 1e-12)
}

func TestLinearScorer_ConfidenceInUnitInterval(t *testing.T) {
	params := &model.ModelParams{
		Classes:      []model.IntentID{"a", "b"},
		Intercept:    []float64{0, -800},
		Coefficients: [][]float64{{0}, {0}},
	}

	result, err := NewLinearScorer(params).Score([]float64{0})
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
}

func TestLinearScorer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		params  *model.ModelParams
		weights []float64
	}{
		{
			name:    "no classes",
			params:  &model.ModelParams{},
			weights: []float64{1},
		},
		{
			name: "length mismatch",
			params: &model.ModelParams{
				Classes:      []model.IntentID{"a"},
				Intercept:    []float64{0},
				Coefficients: [][]float64{{1, 2}},
			},
			weights: []float64{1},
		},
		{
			name: "non-finite score",
			params: &model.ModelParams{
				Classes:      []model.IntentID{"a"},
				Intercept:    []float64{0},
				Coefficients: [][]float64{{math.Inf(1)}},
			},
			weights: []float64{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLinearScorer(tt.params).Score(tt.weights)
			assert.Error(t, err)
		})
	}
}
