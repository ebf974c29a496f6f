package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnclearClass is the predicted class returned when no stage could identify an intent
const UnclearClass IntentID = "can you rephrase the sentence"

// Known intent ids
const (
	IntentCallbackRequest IntentID = "0"
	IntentPropertyListing IntentID = "1"
	IntentPropertySearch  IntentID = "2"
	IntentContactSupport  IntentID = "3"
	IntentFavorites       IntentID = "4"
)

// IntentID identifies an intent class. Offline exporters write class labels either as
// JSON numbers or strings, so both decode into the same string form.
type IntentID string

// UnmarshalJSON implements json.Unmarshaler
func (id *IntentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("intent id must not be null")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = IntentID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("intent id must be a string or number: %w", err)
	}
	*id = IntentID(n.String())
	return nil
}

// String returns the raw id
func (id IntentID) String() string {
	return string(id)
}

// Stage tags which part of the pipeline produced the final answer
type Stage string

const (
	StageAccepted        Stage = "accepted"
	StagePatternFallback Stage = "pattern_fallback"
	StageFuzzyFallback   Stage = "fuzzy_fallback"
	StageUnclear         Stage = "unclear"
)

// ClassScore is a single class with its linear score
type ClassScore struct {
	Class IntentID `json:"class"`
	Score float64  `json:"score"`
}

// ClassificationResult represents the outcome of classifying one message
type ClassificationResult struct {
	PredictedClass   IntentID     `json:"predicted_class"`
	Confidence       float64      `json:"confidence"`
	AllScores        []ClassScore `json:"all_scores"` // Linear scorer output, descending
	UsedPatternMatch bool         `json:"used_pattern_match"`
	UsedFuzzySearch  bool         `json:"used_fuzzy_search"`
	Stage            Stage        `json:"stage"`
}

// IsUnclear reports whether no stage produced a usable intent
func (r *ClassificationResult) IsUnclear() bool {
	return r.Stage == StageUnclear
}
