package model

// Dataset corpus names
const (
	CorpusTraining = "training"
	CorpusFuzzy    = "fuzzy"
)

// Vocabulary maps a normalized token to its feature index
type Vocabulary map[string]int

// Size returns the number of features
func (v Vocabulary) Size() int {
	return len(v)
}

// ModelParams holds the trained parameters of the multinomial linear model
type ModelParams struct {
	Classes      []IntentID  `json:"classes"`
	Intercept    []float64   `json:"intercept"`
	Coefficients [][]float64 `json:"coefficients"` // one row per class, one column per feature
}

// NumClasses returns the number of scored classes
func (p *ModelParams) NumClasses() int {
	return len(p.Classes)
}

// LabeledRow is a single {text, label} example
type LabeledRow struct {
	Text  string   `json:"text" db:"text"`
	Label IntentID `json:"label" db:"label"`
}
