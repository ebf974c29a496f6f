package service

import (
	"fmt"

	"intent-engine/internal/config"
	"intent-engine/internal/model"
	"intent-engine/internal/utils"

	"github.com/sahilm/fuzzy"
)

// MaxDistance means no similarity at all
const MaxDistance = 1.0

// FuzzyMatch is the closest labeled row found for a message
type FuzzyMatch struct {
	Row      model.LabeledRow
	Index    int     // position in the searched corpus
	Distance float64 // 0 is identical, MaxDistance is unrelated
}

// FuzzySearcher finds the closest labeled row to a raw message.
// ok is false when no row is within the searcher's threshold.
type FuzzySearcher interface {
	Search(text string) (match FuzzyMatch, ok bool)
}

// NewFuzzySearcher builds the searcher named by algorithm over rows
func NewFuzzySearcher(algorithm string, rows []model.LabeledRow, threshold float64) (FuzzySearcher, error) {
	if threshold < 0 || threshold > MaxDistance {
		return nil, fmt.Errorf("fuzzy threshold must be within [0, %v], got %v", MaxDistance, threshold)
	}
	switch algorithm {
	case "", config.FuzzyEditDistance:
		return NewEditDistanceSearcher(rows, threshold), nil
	case config.FuzzySubsequence:
		return NewSubsequenceSearcher(rows, threshold), nil
	default:
		return nil, fmt.Errorf("unknown fuzzy algorithm %q", algorithm)
	}
}

type indexedRow struct {
	row        model.LabeledRow
	normalized string
	tokens     []string
}

func indexRows(rows []model.LabeledRow) []indexedRow {
	indexed := make([]indexedRow, len(rows))
	for i, row := range rows {
		normalized := utils.Normalize(row.Text)
		indexed[i] = indexedRow{
			row:        row,
			normalized: normalized,
			tokens:     utils.Tokenize(normalized),
		}
	}
	return indexed
}

// EditDistanceSearcher scores rows with Levenshtein similarity, both over the whole
// normalized phrase and token by token, and keeps the better of the two.
type EditDistanceSearcher struct {
	rows      []indexedRow
	threshold float64
}

// NewEditDistanceSearcher creates a searcher; rows are normalized once here
func NewEditDistanceSearcher(rows []model.LabeledRow, threshold float64) *EditDistanceSearcher {
	return &EditDistanceSearcher{rows: indexRows(rows), threshold: threshold}
}

// distance is the lower of the phrase and token distances
func (s *EditDistanceSearcher) distance(query string, queryTokens []string, row indexedRow) float64 {
	phrase := MaxDistance - utils.EditSimilarity(query, row.normalized)
	tokens := MaxDistance - utils.TokenCoverage(queryTokens, row.tokens)
	if tokens < phrase {
		return tokens
	}
	return phrase
}

// Search implements FuzzySearcher. Ties keep the earliest row.
func (s *EditDistanceSearcher) Search(text string) (FuzzyMatch, bool) {
	query := utils.Normalize(text)
	queryTokens := utils.Tokenize(query)
	if len(queryTokens) == 0 {
		return FuzzyMatch{Distance: MaxDistance}, false
	}

	best := FuzzyMatch{Index: -1, Distance: MaxDistance}
	for i, row := range s.rows {
		d := s.distance(query, queryTokens, row)
		if d > s.threshold {
			continue
		}
		if best.Index == -1 || d < best.Distance {
			best = FuzzyMatch{Row: row.row, Index: i, Distance: d}
		}
	}

	if best.Index == -1 || best.Distance >= MaxDistance {
		return FuzzyMatch{Distance: MaxDistance}, false
	}
	return best, true
}

// rowSource adapts indexed rows to fuzzy.Source
type rowSource []indexedRow

func (r rowSource) String(i int) string { return r[i].normalized }
func (r rowSource) Len() int            { return len(r) }

// SubsequenceSearcher matches each query token as a compact subsequence of the row
// text. A row's distance is the share of query tokens it fails to contain.
type SubsequenceSearcher struct {
	rows      rowSource
	threshold float64
}

// NewSubsequenceSearcher creates a searcher; rows are normalized once here
func NewSubsequenceSearcher(rows []model.LabeledRow, threshold float64) *SubsequenceSearcher {
	return &SubsequenceSearcher{rows: rowSource(indexRows(rows)), threshold: threshold}
}

// Search implements FuzzySearcher. Ties keep the earliest row.
func (s *SubsequenceSearcher) Search(text string) (FuzzyMatch, bool) {
	queryTokens := utils.Tokenize(utils.Normalize(text))
	if len(queryTokens) == 0 || s.rows.Len() == 0 {
		return FuzzyMatch{Distance: MaxDistance}, false
	}

	hits := make([]int, s.rows.Len())
	for _, token := range queryTokens {
		for _, m := range fuzzy.FindFrom(token, s.rows) {
			if compactSpan(m.MatchedIndexes, len(token)) {
				hits[m.Index]++
			}
		}
	}

	best := FuzzyMatch{Index: -1, Distance: MaxDistance}
	for i, h := range hits {
		if h == 0 {
			continue
		}
		d := MaxDistance - float64(h)/float64(len(queryTokens))
		if d > s.threshold {
			continue
		}
		if best.Index == -1 || d < best.Distance {
			best = FuzzyMatch{Row: s.rows[i].row, Index: i, Distance: d}
		}
	}

	if best.Index == -1 {
		return FuzzyMatch{Distance: MaxDistance}, false
	}
	return best, true
}

// compactSpan rejects subsequence hits scattered across the row.
// At most two extra characters may sit between the first and last matched ones.
func compactSpan(indexes []int, tokenLen int) bool {
	if len(indexes) == 0 {
		return false
	}
	span := indexes[len(indexes)-1] - indexes[0] + 1
	return span <= tokenLen+2
}
