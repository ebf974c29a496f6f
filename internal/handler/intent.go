package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"intent-engine/internal/logger"
	"intent-engine/internal/model"
	"intent-engine/internal/service"
	"intent-engine/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxBatchSize caps the number of messages accepted by PredictBatch
const MaxBatchSize = 100

const classifyFailedMessage = "Failed to classify message"

// Predictor classifies messages
type Predictor interface {
	Predict(text string) (*model.ClassificationResult, error)
	Classes() []model.IntentID
}

// IntentHandler handles intent classification HTTP requests
type IntentHandler struct {
	predictor Predictor
	logger    *zap.Logger
}

// NewIntentHandler creates a new intent handler
func NewIntentHandler(predictor Predictor, log *zap.Logger) *IntentHandler {
	return &IntentHandler{
		predictor: predictor,
		logger:    logger.OrNop(log),
	}
}

// Predict handles POST /api/v1/intent/predict
func (h *IntentHandler) Predict(c *gin.Context) {
	start := time.Now()

	var req model.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	text, err := utils.TextValue(req.Message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: message must be a non-empty string"})
		return
	}

	result, err := h.predictor.Predict(text)
	if err != nil {
		h.writePredictError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.PredictResponse{
		ClassificationResult: result,
		RequestID:            RequestIDFrom(c),
		Took:                 time.Since(start).Milliseconds(),
	})
}

// PredictBatch handles POST /api/v1/intent/predict/batch
func (h *IntentHandler) PredictBatch(c *gin.Context) {
	start := time.Now()

	var req model.BatchPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No messages provided"})
		return
	}
	if len(req.Messages) > MaxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Too many messages: at most %d per request", MaxBatchSize)})
		return
	}

	// Validate every message before classifying any
	texts := make([]string, len(req.Messages))
	for i, msg := range req.Messages {
		text, err := utils.TextValue(msg)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid request: message at index %d must be a non-empty string", i),
			})
			return
		}
		texts[i] = text
	}

	results := make([]*model.ClassificationResult, len(texts))
	for i, text := range texts {
		result, err := h.predictor.Predict(text)
		if err != nil {
			h.writePredictError(c, err)
			return
		}
		results[i] = result
	}

	c.JSON(http.StatusOK, model.BatchPredictResponse{
		Results:   results,
		RequestID: RequestIDFrom(c),
		Took:      time.Since(start).Milliseconds(),
	})
}

// Classes handles GET /api/v1/intent/classes
func (h *IntentHandler) Classes(c *gin.Context) {
	classes := h.predictor.Classes()
	c.JSON(http.StatusOK, model.ClassesResponse{
		Classes: classes,
		Total:   len(classes),
	})
}

// writePredictError keeps internal failure details out of the response
func (h *IntentHandler) writePredictError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: message must be a non-empty string"})
		return
	}

	h.logger.Error("Intent classification failed",
		zap.String("request_id", RequestIDFrom(c)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": classifyFailedMessage})
}
