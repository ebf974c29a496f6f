package service

import (
	"testing"

	"intent-engine/internal/config"
	"intent-engine/internal/model"
	"intent-engine/internal/resource"

	"github.com/stretchr/testify/require"
)

var testClasses = []model.IntentID{
	model.IntentCallbackRequest,
	model.IntentPropertyListing,
	model.IntentPropertySearch,
	model.IntentContactSupport,
	model.IntentFavorites,
}

func testVocabulary() model.Vocabulary {
	return model.Vocabulary{
		"call":      0,
		"back":      1,
		"looking":   2,
		"apartment": 3,
		"sell":      4,
		"support":   5,
		"favorites": 6,
	}
}

// flatModel scores every class 0, so the top confidence is always 1/len(classes)
func flatModel(features int) *model.ModelParams {
	params := &model.ModelParams{
		Classes:      append([]model.IntentID(nil), testClasses...),
		Intercept:    make([]float64, len(testClasses)),
		Coefficients: make([][]float64, len(testClasses)),
	}
	for k := range params.Coefficients {
		params.Coefficients[k] = make([]float64, features)
	}
	return params
}

// apartmentModel is confident about property search whenever "apartment" appears
func apartmentModel(vocab model.Vocabulary) *model.ModelParams {
	params := flatModel(vocab.Size())
	params.Coefficients[2][vocab["apartment"]] = 10
	return params
}

func testFuzzyRows() []model.LabeledRow {
	return []model.LabeledRow{
		{Text: "call me back", Label: model.IntentCallbackRequest},
		{Text: "show me flats in hyderabad", Label: model.IntentPropertySearch},
		{Text: "i want to sell my house", Label: model.IntentPropertyListing},
		{Text: "my saved homes", Label: model.IntentFavorites},
		{Text: "need customer support", Label: model.IntentContactSupport},
	}
}

func testStore(params *model.ModelParams) *resource.Store {
	vocab := testVocabulary()
	if params == nil {
		params = flatModel(vocab.Size())
	}
	return &resource.Store{
		Vocabulary:   vocab,
		Model:        params,
		Dataset:      testFuzzyRows(),
		FuzzyDataset: testFuzzyRows(),
	}
}

func testClassifierConfig() config.ClassifierConfig {
	return config.DefaultClassifierConfig()
}

func newTestClassifier(t *testing.T, params *model.ModelParams) *IntentClassifier {
	t.Helper()
	c, err := NewIntentClassifierFromConfig(testStore(params), testClassifierConfig(), nil)
	require.NoError(t, err)
	return c
}
