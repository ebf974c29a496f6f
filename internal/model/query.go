package model

// PredictRequest represents a classification request.
// Message is left untyped so null and non-string values can be rejected explicitly.
type PredictRequest struct {
	Message any `json:"message"`
}

// PredictResponse represents a classification response
type PredictResponse struct {
	*ClassificationResult
	RequestID string `json:"request_id,omitempty"`
	Took      int64  `json:"took_ms"` // Response time in milliseconds
}

// ClassesResponse lists the classes the loaded model scores
type ClassesResponse struct {
	Classes []IntentID `json:"classes"`
	Total   int        `json:"total"`
}

// EvalReport summarizes a classifier run over a labeled dataset
type EvalReport struct {
	Total    int                    `json:"total"`
	Correct  int                    `json:"correct"`
	Accuracy float64                `json:"accuracy"`
	ByStage  map[Stage]*StageReport `json:"by_stage"`
}

// StageReport holds per-stage counts of an evaluation run
type StageReport struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// BatchPredictRequest classifies several messages in one call
type BatchPredictRequest struct {
	Messages []any `json:"messages"`
}

// BatchPredictResponse holds one result per message, in request order
type BatchPredictResponse struct {
	Results   []*ClassificationResult `json:"results"`
	RequestID string                  `json:"request_id,omitempty"`
	Took      int64                   `json:"took_ms"`
}
