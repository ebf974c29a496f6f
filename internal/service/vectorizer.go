package service

import (
	"math"

	"intent-engine/internal/model"
	"intent-engine/internal/utils"
)

// Vectorize counts the in-vocabulary tokens of normalized text.
// The result always has vocab.Size() components; unknown tokens are ignored.
func Vectorize(normalized string, vocab model.Vocabulary) []int {
	counts := make([]int, vocab.Size())
	for _, token := range utils.Tokenize(normalized) {
		if idx, ok := vocab[token]; ok {
			counts[idx]++
		}
	}
	return counts
}

// WeightTerms applies log-dampened term frequency: c -> 1 + ln(c) for c > 0.
// No document frequency is involved.
func WeightTerms(counts []int) []float64 {
	weights := make([]float64, len(counts))
	for i, c := range counts {
		if c > 0 {
			weights[i] = 1 + math.Log(float64(c))
		}
	}
	return weights
}
