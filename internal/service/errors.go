package service

import (
	"fmt"

	"intent-engine/internal/utils"
)

// ErrInvalidInput is returned by Predict for an empty message
var ErrInvalidInput = utils.ErrInvalidInput

// Pipeline stages reported by PredictionError
const (
	StageNormalize = "normalize"
	StageVectorize = "vectorize"
	StageScore     = "score"
	StagePattern   = "pattern"
	StageFuzzy     = "fuzzy"
)

// PredictionError wraps an unexpected failure inside the classification pipeline.
// Callers should log it and answer with a generic message.
type PredictionError struct {
	Stage string
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed during %s: %v", e.Stage, e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}
