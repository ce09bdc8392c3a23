// Package api exposes the predictor service over HTTP with gin.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/predictor"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

// Handler serves the predictor endpoints.
type Handler struct {
	svc          *predictor.Service
	logger       log.Logger
	trainTimeout time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(logger log.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithTrainTimeout bounds each training request. Zero means no limit
// beyond the client connection.
func WithTrainTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.trainTimeout = d
	}
}

// NewHandler creates a Handler for svc.
func NewHandler(svc *predictor.Service, opts ...HandlerOption) *Handler {
	h := &Handler{svc: svc}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = log.GetLoggerWithName("api")
	}
	return h
}

// FeedbackRequest reports the name a prediction should have returned.
type FeedbackRequest struct {
	Predicted string `json:"predicted" binding:"required"`
	Actual    string `json:"actual" binding:"required"`
}

// EvaluateRequest scores the installed model on labelled examples.
type EvaluateRequest struct {
	Examples []preprocessing.LabeledExample `json:"examples" binding:"required"`
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	c.JSON(status, ErrorResponse(status, publicMessage(status, err), nil))
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, ErrorResponse(http.StatusBadRequest, "Invalid request data", err.Error()))
}

// Train handles POST /api/train.
func (h *Handler) Train(c *gin.Context) {
	var req predictor.TrainingOptions
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.trainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.trainTimeout)
		defer cancel()
	}

	m, err := h.svc.Train(ctx, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse("Model trained", m))
}

// Predict handles POST /api/predict. The body is a demographic record.
func (h *Handler) Predict(c *gin.Context) {
	var req preprocessing.DemographicRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	res, err := h.svc.Predict(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse("Prediction ready", res))
}

// Evaluate handles POST /api/evaluate.
func (h *Handler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	acc, err := h.svc.Evaluate(c.Request.Context(), req.Examples)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse("Evaluated", gin.H{"accuracy": acc}))
}

// DatasetStats handles GET /api/dataset/stats.
func (h *Handler) DatasetStats(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse("Dataset statistics", h.svc.DatasetStats()))
}

// Feedback handles POST /api/feedback.
func (h *Handler) Feedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	st, err := h.svc.RecordFeedback(req.Predicted, req.Actual)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse("Feedback recorded", st))
}

// Model handles GET /api/model.
func (h *Handler) Model(c *gin.Context) {
	info, ok := h.svc.Model()
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse(http.StatusNotFound, "No model trained", nil))
		return
	}
	c.JSON(http.StatusOK, SuccessResponse("Installed model", info))
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	_, trained := h.svc.Model()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "nameml",
		"trained": trained,
	})
}
