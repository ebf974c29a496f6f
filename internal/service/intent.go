package service

import (
	"fmt"

	"intent-engine/internal/config"
	"intent-engine/internal/logger"
	"intent-engine/internal/model"
	"intent-engine/internal/resource"
	"intent-engine/internal/utils"

	"go.uber.org/zap"
)

// Default arbitration values
const (
	DefaultConfidenceThreshold = config.DefaultConfidenceThreshold
	DefaultPatternConfidence   = config.DefaultPatternConfidence
	DefaultFuzzyThreshold      = config.DefaultFuzzyThreshold
)

// IntentClassifier maps free-form text to an intent. It scores the text with the
// linear model and falls back to the pattern table and then the fuzzy searcher when
// the model is not confident enough.
//
// An IntentClassifier is read-only after construction and safe for concurrent use.
type IntentClassifier struct {
	vocab   model.Vocabulary
	classes []model.IntentID
	scorer  *LinearScorer

	patterns *PatternTable
	fuzzy    FuzzySearcher

	confidenceThreshold float64
	patternConfidence   float64

	logger *zap.Logger
}

// NewIntentClassifier creates a classifier over a loaded store.
// The thresholds in cfg are used as given; start from config.DefaultClassifierConfig
// when nothing is configured.
func NewIntentClassifier(store *resource.Store, patterns *PatternTable, fuzzy FuzzySearcher, cfg config.ClassifierConfig, log *zap.Logger) (*IntentClassifier, error) {
	if store == nil {
		return nil, fmt.Errorf("resource store is required")
	}
	if err := store.Validate(); err != nil {
		return nil, err
	}
	if patterns == nil {
		patterns = NewPatternTable(nil)
	}
	if fuzzy == nil {
		return nil, fmt.Errorf("fuzzy searcher is required")
	}

	c := &IntentClassifier{
		vocab:               store.Vocabulary,
		classes:             append([]model.IntentID(nil), store.Model.Classes...),
		scorer:              NewLinearScorer(store.Model),
		patterns:            patterns,
		fuzzy:               fuzzy,
		confidenceThreshold: cfg.ConfidenceThreshold,
		patternConfidence:   cfg.PatternConfidence,
		logger:              logger.OrNop(log),
	}
	return c, nil
}

// NewIntentClassifierFromConfig wires the embedded pattern table and the configured
// fuzzy searcher over the store's fuzzy dataset.
func NewIntentClassifierFromConfig(store *resource.Store, cfg config.ClassifierConfig, log *zap.Logger) (*IntentClassifier, error) {
	if store == nil {
		return nil, fmt.Errorf("resource store is required")
	}

	searcher, err := NewFuzzySearcher(cfg.FuzzyAlgorithm, store.FuzzyDataset, cfg.FuzzyThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to create fuzzy searcher: %w", err)
	}

	return NewIntentClassifier(store, DefaultPatternTable(), searcher, cfg, log)
}

// Predict classifies a message.
// An empty message returns ErrInvalidInput; failing to find an intent is not an error
// and yields the unclear result instead. Any other failure, a panic included, is
// returned as a *PredictionError naming the stage it happened in.
func (c *IntentClassifier) Predict(text string) (result *model.ClassificationResult, err error) {
	if text == "" {
		return nil, ErrInvalidInput
	}

	stage := StageNormalize
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("Intent classification panicked", zap.String("stage", stage), zap.Any("panic", r))
			result = nil
			err = &PredictionError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	normalized := utils.Normalize(text)

	stage = StageVectorize
	weights := WeightTerms(Vectorize(normalized, c.vocab))

	stage = StageScore
	scored, err := c.scorer.Score(weights)
	if err != nil {
		c.logger.Debug("Intent scoring failed", zap.Error(err))
		return nil, &PredictionError{Stage: stage, Err: err}
	}

	result = &model.ClassificationResult{
		AllScores: scored.Scores,
	}

	if scored.Confidence >= c.confidenceThreshold {
		result.PredictedClass = scored.Top.Class
		result.Confidence = clampUnit(scored.Confidence)
		result.Stage = model.StageAccepted
		c.logDecision(result, scored.Confidence)
		return result, nil
	}

	stage = StagePattern
	if rule, ok := c.patterns.Match(text); ok {
		result.PredictedClass = rule.IntentID
		result.Confidence = c.patternConfidence
		result.UsedPatternMatch = true
		result.Stage = model.StagePatternFallback
		c.logDecision(result, scored.Confidence, zap.String("pattern", rule.Pattern.String()))
		return result, nil
	}

	stage = StageFuzzy
	match, ok := c.fuzzy.Search(text)
	if !ok || match.Distance >= MaxDistance {
		result.PredictedClass = model.UnclearClass
		result.Confidence = 0
		result.Stage = model.StageUnclear
		c.logDecision(result, scored.Confidence)
		return result, nil
	}

	result.PredictedClass = match.Row.Label
	result.Confidence = clampUnit(MaxDistance - match.Distance)
	result.UsedFuzzySearch = true
	result.Stage = model.StageFuzzyFallback
	c.logDecision(result, scored.Confidence,
		zap.Int("fuzzy_row", match.Index),
		zap.Float64("fuzzy_distance", match.Distance),
	)
	return result, nil
}

// PredictValue classifies a dynamically typed message, such as one decoded from JSON.
// nil, non-string and empty values return ErrInvalidInput.
func (c *IntentClassifier) PredictValue(v any) (*model.ClassificationResult, error) {
	text, err := utils.TextValue(v)
	if err != nil {
		return nil, err
	}
	return c.Predict(text)
}

// Classes returns the scored classes in model order
func (c *IntentClassifier) Classes() []model.IntentID {
	return append([]model.IntentID(nil), c.classes...)
}

func (c *IntentClassifier) logDecision(result *model.ClassificationResult, modelConfidence float64, fields ...zap.Field) {
	if ce := c.logger.Check(zap.DebugLevel, "Intent classified"); ce != nil {
		ce.Write(append([]zap.Field{
			zap.String("stage", string(result.Stage)),
			zap.String("class", result.PredictedClass.String()),
			zap.Float64("confidence", result.Confidence),
			zap.Float64("model_confidence", modelConfidence),
		}, fields...)...)
	}
}

func clampUnit(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
