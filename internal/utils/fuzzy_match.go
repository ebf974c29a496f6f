package utils

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// EditSimilarity returns 1 - levenshtein(a, b) / max(len(a), len(b)) measured in runes.
// Two empty strings are identical.
func EditSimilarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	similarity := 1.0 - float64(dist)/float64(maxLen)
	if similarity < 0 {
		return 0
	}
	return similarity
}

// BestTokenSimilarity returns the highest EditSimilarity between token and any candidate
func BestTokenSimilarity(token string, candidates []string) float64 {
	best := 0.0
	for _, c := range candidates {
		if s := EditSimilarity(token, c); s > best {
			best = s
			if best == 1.0 {
				break
			}
		}
	}
	return best
}

// TokenCoverage returns the mean, over query tokens, of each token's best similarity
// against the target tokens. Extra target tokens do not lower the score.
func TokenCoverage(queryTokens, targetTokens []string) float64 {
	if len(queryTokens) == 0 || len(targetTokens) == 0 {
		return 0
	}

	total := 0.0
	for _, q := range queryTokens {
		total += BestTokenSimilarity(q, targetTokens)
	}
	return total / float64(len(queryTokens))
}
