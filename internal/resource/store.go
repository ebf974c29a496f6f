// Package resource loads the static artifacts the intent classifier needs: the token
// vocabulary, the trained linear model, the labeled training dataset and the fuzzy
// dataset. A Store is built once at startup, validated as a whole, and then shared
// read-only by every prediction.
package resource

import (
	"context"
	"fmt"
	"math"

	"intent-engine/internal/model"
)

// Artifact names used in errors and logs
const (
	ArtifactVocabulary   = "vocabulary"
	ArtifactModel        = "model"
	ArtifactDataset      = "dataset"
	ArtifactFuzzyDataset = "fuzzy_dataset"
)

// Store holds the loaded artifacts. It must not be modified after Validate succeeds.
type Store struct {
	Vocabulary   model.Vocabulary
	Model        *model.ModelParams
	Dataset      []model.LabeledRow
	FuzzyDataset []model.LabeledRow
}

// Loader produces a fully validated Store or an error; never a partial one
type Loader interface {
	Load(ctx context.Context) (*Store, error)
}

// LoadError reports an artifact that could not be read, parsed or validated
type LoadError struct {
	Artifact string
	Source   string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("failed to load %s: %v", e.Artifact, e.Err)
	}
	return fmt.Sprintf("failed to load %s from %s: %v", e.Artifact, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Validate checks the cross-artifact invariants
func (s *Store) Validate() error {
	if err := validateVocabulary(s.Vocabulary); err != nil {
		return &LoadError{Artifact: ArtifactVocabulary, Err: err}
	}
	if err := validateModel(s.Model, s.Vocabulary.Size()); err != nil {
		return &LoadError{Artifact: ArtifactModel, Err: err}
	}
	if err := validateRows(s.Dataset); err != nil {
		return &LoadError{Artifact: ArtifactDataset, Err: err}
	}
	if err := validateRows(s.FuzzyDataset); err != nil {
		return &LoadError{Artifact: ArtifactFuzzyDataset, Err: err}
	}
	return nil
}

func validateVocabulary(vocab model.Vocabulary) error {
	if len(vocab) == 0 {
		return fmt.Errorf("vocabulary is empty")
	}

	// indices must be exactly 0..N-1
	seen := make([]bool, len(vocab))
	for token, idx := range vocab {
		if token == "" {
			return fmt.Errorf("empty token")
		}
		if idx < 0 || idx >= len(vocab) {
			return fmt.Errorf("token %q has index %d outside [0, %d)", token, idx, len(vocab))
		}
		if seen[idx] {
			return fmt.Errorf("index %d assigned to more than one token", idx)
		}
		seen[idx] = true
	}
	return nil
}

func validateModel(params *model.ModelParams, features int) error {
	if params == nil {
		return fmt.Errorf("model parameters missing")
	}
	n := len(params.Classes)
	if n == 0 {
		return fmt.Errorf("model has no classes")
	}
	if len(params.Intercept) != n {
		return fmt.Errorf("intercept has %d entries, want %d", len(params.Intercept), n)
	}
	if len(params.Coefficients) != n {
		return fmt.Errorf("coefficients have %d rows, want %d", len(params.Coefficients), n)
	}

	seen := make(map[model.IntentID]bool, n)
	for k, class := range params.Classes {
		if class == "" {
			return fmt.Errorf("class %d has an empty id", k)
		}
		if seen[class] {
			return fmt.Errorf("duplicate class %q", class)
		}
		seen[class] = true

		if !isFinite(params.Intercept[k]) {
			return fmt.Errorf("intercept of class %q is not finite", class)
		}
		row := params.Coefficients[k]
		if len(row) != features {
			return fmt.Errorf("coefficient row of class %q has %d columns, want %d", class, len(row), features)
		}
		for i, c := range row {
			if !isFinite(c) {
				return fmt.Errorf("coefficient [%q][%d] is not finite", class, i)
			}
		}
	}
	return nil
}

func validateRows(rows []model.LabeledRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("dataset is empty")
	}
	for i, row := range rows {
		if row.Text == "" {
			return fmt.Errorf("row %d has empty text", i)
		}
		if row.Label == "" {
			return fmt.Errorf("row %d has empty label", i)
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
