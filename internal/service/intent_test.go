package service

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"intent-engine/internal/config"
	"intent-engine/internal/model"
	"intent-engine/internal/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertScoresSorted(t *testing.T, result *model.ClassificationResult) {
	t.Helper()
	require.Len(t, result.AllScores, len(testClasses))
	assert.True(t, sort.SliceIsSorted(result.AllScores, func(i, j int) bool {
		return result.AllScores[i].Score > result.AllScores[j].Score
	}), "scores must be in descending order")
}

func TestIntentClassifier_AcceptsConfidentModel(t *testing.T) {
	c := newTestClassifier(t, apartmentModel(testVocabulary()))

	result, err := c.Predict("Apartment, please!")
	require.NoError(t, err)

	assert.Equal(t, model.IntentPropertySearch, result.PredictedClass)
	assert.GreaterOrEqual(t, result.Confidence, DefaultConfidenceThreshold)
	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.False(t, result.UsedPatternMatch)
	assert.False(t, result.UsedFuzzySearch)
	assert.Equal(t, model.StageAccepted, result.Stage)
	assertScoresSorted(t, result)
	assert.Equal(t, model.IntentPropertySearch, result.AllScores[0].Class)
}

func TestIntentClassifier_ConfidentModelSkipsPatterns(t *testing.T) {
	c := newTestClassifier(t, apartmentModel(testVocabulary()))

	// would match the callback rules if the model were not confident
	result, err := c.Predict("call me back about the apartment")
	require.NoError(t, err)

	assert.Equal(t, model.IntentPropertySearch, result.PredictedClass)
	assert.Equal(t, model.StageAccepted, result.Stage)
	assert.False(t, result.UsedPatternMatch)
}

func TestIntentClassifier_Scenarios(t *testing.T) {
	c := newTestClassifier(t, nil)

	tests := []struct {
		name        string
		text        string
		wantClass   model.IntentID
		wantConf    float64
		wantStage   model.Stage
		wantPattern bool
		wantFuzzy   bool
	}{
		{
			name:        "callback request via patterns",
			text:        "I want a callback please",
			wantClass:   model.IntentCallbackRequest,
			wantConf:    0.8,
			wantStage:   model.StagePatternFallback,
			wantPattern: true,
		},
		{
			name:        "property search via patterns",
			text:        "looking for a 2bhk apartment in Gachibowli",
			wantClass:   model.IntentPropertySearch,
			wantConf:    0.8,
			wantStage:   model.StagePatternFallback,
			wantPattern: true,
		},
		{
			name:      "keyboard mash is unclear",
			text:      "zxqv jkwp qqhz",
			wantClass: model.UnclearClass,
			wantConf:  0,
			wantStage: model.StageUnclear,
		},
		{
			name:      "punctuation only is unclear",
			text:      "?!...",
			wantClass: model.UnclearClass,
			wantConf:  0,
			wantStage: model.StageUnclear,
		},
		{
			name:      "misspelling resolved by fuzzy search",
			text:      "cal me bak",
			wantClass: model.IntentCallbackRequest,
			wantConf:  1 - 2.0/12.0,
			wantStage: model.StageFuzzyFallback,
			wantFuzzy: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := c.Predict(tt.text)
			require.NoError(t, err)

			assert.Equal(t, tt.wantClass, result.PredictedClass)
			assert.InDelta(t, tt.wantConf, result.Confidence, 1e-9)
			assert.Equal(t, tt.wantStage, result.Stage)
			assert.Equal(t, tt.wantPattern, result.UsedPatternMatch)
			assert.Equal(t, tt.wantFuzzy, result.UsedFuzzySearch)
			assertScoresSorted(t, result)
		})
	}
}

func TestIntentClassifier_UnclearResult(t *testing.T) {
	c := newTestClassifier(t, nil)

	result, err := c.Predict("zxqv jkwp qqhz")
	require.NoError(t, err)

	assert.True(t, result.IsUnclear())
	assert.Equal(t, model.IntentID("can you rephrase the sentence"), result.PredictedClass)
	assert.Zero(t, result.Confidence)
	assert.False(t, result.UsedPatternMatch)
	assert.False(t, result.UsedFuzzySearch)
}

func TestIntentClassifier_InvalidInput(t *testing.T) {
	c := newTestClassifier(t, nil)

	_, err := c.Predict("")
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, v := range []any{nil, "", 42, 3.5, true, []any{"call me"}, map[string]any{}} {
		_, err := c.PredictValue(v)
		assert.ErrorIs(t, err, ErrInvalidInput, "value %#v", v)
	}

	result, err := c.PredictValue("I want a callback please")
	require.NoError(t, err)
	assert.Equal(t, model.IntentCallbackRequest, result.PredictedClass)
}

func TestIntentClassifier_WhitespaceOnlyIsNotAnError(t *testing.T) {
	c := newTestClassifier(t, nil)

	result, err := c.Predict("   ")
	require.NoError(t, err)
	assert.Equal(t, model.StageUnclear, result.Stage)
	assert.Len(t, result.AllScores, len(testClasses))
}

func TestIntentClassifier_ThresholdIsInclusive(t *testing.T) {
	cfg := testClassifierConfig()
	// a flat model over five classes yields exactly 1/5
	cfg.ConfidenceThreshold = 0.2

	c, err := NewIntentClassifierFromConfig(testStore(nil), cfg, nil)
	require.NoError(t, err)

	result, err := c.Predict("zxqv jkwp qqhz")
	require.NoError(t, err)

	assert.Equal(t, model.StageAccepted, result.Stage)
	assert.InDelta(t, 0.2, result.Confidence, 1e-12)
	// ties keep class order
	assert.Equal(t, model.IntentCallbackRequest, result.PredictedClass)
	for i, cs := range result.AllScores {
		assert.Equal(t, testClasses[i], cs.Class)
	}
}

func TestIntentClassifier_ConfigDefaults(t *testing.T) {
	store := testStore(nil)
	searcher, err := NewFuzzySearcher(config.FuzzyEditDistance, store.FuzzyDataset, DefaultFuzzyThreshold)
	require.NoError(t, err)

	c, err := NewIntentClassifier(store, DefaultPatternTable(), searcher, config.DefaultClassifierConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfidenceThreshold, c.confidenceThreshold)
	assert.Equal(t, DefaultPatternConfidence, c.patternConfidence)
}

func TestIntentClassifier_ZeroConfidenceThresholdAcceptsModel(t *testing.T) {
	cfg := testClassifierConfig()
	cfg.ConfidenceThreshold = 0

	c, err := NewIntentClassifierFromConfig(testStore(nil), cfg, nil)
	require.NoError(t, err)
	assert.Zero(t, c.confidenceThreshold)

	// matches the callback rules, but the model answer is always good enough
	result, err := c.Predict("please call me")
	require.NoError(t, err)
	assert.Equal(t, model.StageAccepted, result.Stage)
	assert.False(t, result.UsedPatternMatch)
	assert.InDelta(t, 0.2, result.Confidence, 1e-12)
}

func TestIntentClassifier_ZeroFuzzyThresholdNeedsExactRow(t *testing.T) {
	cfg := testClassifierConfig()
	cfg.FuzzyThreshold = 0

	c, err := NewIntentClassifierFromConfig(testStore(nil), cfg, nil)
	require.NoError(t, err)

	result, err := c.Predict("cal me bak")
	require.NoError(t, err)
	assert.Equal(t, model.UnclearClass, result.PredictedClass)
	assert.Equal(t, model.StageUnclear, result.Stage)

	match, ok := c.fuzzy.Search("i want to sell my house")
	require.True(t, ok)
	assert.Equal(t, model.IntentPropertyListing, match.Row.Label)
	assert.Zero(t, match.Distance)
}

func TestIntentClassifier_CustomPatternConfidence(t *testing.T) {
	cfg := testClassifierConfig()
	cfg.PatternConfidence = 0.65

	c, err := NewIntentClassifierFromConfig(testStore(nil), cfg, nil)
	require.NoError(t, err)

	result, err := c.Predict("please call me")
	require.NoError(t, err)
	assert.Equal(t, model.IntentCallbackRequest, result.PredictedClass)
	assert.Equal(t, 0.65, result.Confidence)
}

func TestIntentClassifier_SubsequenceSearcher(t *testing.T) {
	cfg := testClassifierConfig()
	cfg.FuzzyAlgorithm = config.FuzzySubsequence

	c, err := NewIntentClassifierFromConfig(testStore(nil), cfg, nil)
	require.NoError(t, err)

	result, err := c.Predict("cal me bak")
	require.NoError(t, err)
	assert.Equal(t, model.IntentCallbackRequest, result.PredictedClass)
	assert.Equal(t, model.StageFuzzyFallback, result.Stage)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)

	result, err = c.Predict("zxqv jkwp qqhz")
	require.NoError(t, err)
	assert.Equal(t, model.UnclearClass, result.PredictedClass)
}

func TestIntentClassifier_ScoringFailure(t *testing.T) {
	c := newTestClassifier(t, nil)

	// a model that no longer fits the vocabulary
	broken := flatModel(2)
	c.scorer = NewLinearScorer(broken)

	_, err := c.Predict("call me back")
	require.Error(t, err)

	var predErr *PredictionError
	require.True(t, errors.As(err, &predErr))
	assert.Equal(t, StageScore, predErr.Stage)
	assert.Contains(t, err.Error(), "prediction failed during score")
	assert.False(t, errors.Is(err, ErrInvalidInput))
}

type panickingSearcher struct{}

func (panickingSearcher) Search(string) (FuzzyMatch, bool) {
	panic("index out of range")
}

func TestIntentClassifier_PanicBecomesPredictionError(t *testing.T) {
	c, err := NewIntentClassifier(testStore(nil), NewPatternTable(nil), panickingSearcher{}, testClassifierConfig(), nil)
	require.NoError(t, err)

	var result *model.ClassificationResult
	require.NotPanics(t, func() {
		result, err = c.Predict("zxqv jkwp qqhz")
	})
	assert.Nil(t, result)

	var predErr *PredictionError
	require.True(t, errors.As(err, &predErr))
	assert.Equal(t, StageFuzzy, predErr.Stage)
	assert.Contains(t, err.Error(), "index out of range")
}

func TestNewIntentClassifier_Errors(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := NewIntentClassifierFromConfig(nil, testClassifierConfig(), nil)
		assert.Error(t, err)
	})

	t.Run("invalid store", func(t *testing.T) {
		store := testStore(nil)
		store.FuzzyDataset = nil
		_, err := NewIntentClassifier(store, nil, NewEditDistanceSearcher(nil, 0.4), testClassifierConfig(), nil)

		var loadErr *resource.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, resource.ArtifactFuzzyDataset, loadErr.Artifact)
	})

	t.Run("missing fuzzy searcher", func(t *testing.T) {
		_, err := NewIntentClassifier(testStore(nil), nil, nil, testClassifierConfig(), nil)
		assert.Error(t, err)
	})

	t.Run("unknown fuzzy algorithm", func(t *testing.T) {
		cfg := testClassifierConfig()
		cfg.FuzzyAlgorithm = "soundex"
		_, err := NewIntentClassifierFromConfig(testStore(nil), cfg, nil)
		assert.Error(t, err)
	})
}

func TestIntentClassifier_Classes(t *testing.T) {
	c := newTestClassifier(t, nil)

	classes := c.Classes()
	assert.Equal(t, testClasses, classes)

	classes[0] = "mutated"
	assert.Equal(t, model.IntentCallbackRequest, c.Classes()[0])
}

func TestIntentClassifier_ConcurrentPredict(t *testing.T) {
	c := newTestClassifier(t, apartmentModel(testVocabulary()))

	inputs := []string{
		"apartment please",
		"I want a callback please",
		"looking for a 2bhk flat in Gachibowli",
		"zxqv jkwp qqhz",
		"cal me bak",
	}
	want := make([]*model.ClassificationResult, len(inputs))
	for i, text := range inputs {
		result, err := c.Predict(text)
		require.NoError(t, err)
		want[i] = result
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64*len(inputs))
	for n := 0; n < 64; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			i := n % len(inputs)
			result, err := c.Predict(inputs[i])
			if err != nil {
				errs <- err
				return
			}
			if result.PredictedClass != want[i].PredictedClass || result.Confidence != want[i].Confidence {
				errs <- errors.New("concurrent result differs for " + inputs[i])
			}
		}(n)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
