package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labelsafe/backend/internal/domain"
)

// ClassificationService is the orchestration surface the handlers need.
type ClassificationService interface {
	Classify(ctx context.Context, code, lang string) (*domain.ClassificationResult, error)
	History() []domain.HistoryEntry
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service ClassificationService
}

// NewHandler creates a new HTTP handler
func NewHandler(service ClassificationService) *Handler {
	return &Handler{service: service}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "labelsafe-backend",
		"version": "1.0.0",
	})
}

// scanRequest is the body of POST /api/v1/scan.
type scanRequest struct {
	Code string `json:"code" binding:"required"`
	Lang string `json:"lang,omitempty"`
}

// Scan classifies a scanned or typed barcode.
func (h *Handler) Scan(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "classification service not configured",
		})
		return
	}

	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	h.classify(c, req.Code, req.Lang)
}

// ScanByCode classifies the barcode given in the URL path.
func (h *Handler) ScanByCode(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "classification service not configured",
		})
		return
	}

	h.classify(c, c.Param("code"), c.Query("lang"))
}

func (h *Handler) classify(c *gin.Context, code, lang string) {
	result, err := h.service.Classify(c.Request.Context(), code, lang)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "product not found",
				"hint":  "try manual entry",
			})
		case errors.Is(err, domain.ErrLookupFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "food database unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// History returns the recent scan history, newest first.
func (h *Handler) History(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "classification service not configured",
		})
		return
	}

	entries := h.service.History()
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
