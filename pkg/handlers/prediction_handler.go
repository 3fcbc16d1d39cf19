package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wildlife-threat-api/pkg/classifier"
	"wildlife-threat-api/pkg/dataset"
	"wildlife-threat-api/pkg/logger"
	"wildlife-threat-api/pkg/services"
)

// NotFoundMessage is the error payload for unknown species.
const NotFoundMessage = "Species not found."

// Predictor is the part of the prediction service the handlers use.
type Predictor interface {
	Species() []string
	Predict(ctx context.Context, name string) (*services.Prediction, error)
	Thumbnail(ctx context.Context, name string) (string, error)
	ModelSummary() classifier.Summary
}

// PredictionHandler serves species listing, prediction and model info.
type PredictionHandler struct {
	predictor Predictor
}

func NewPredictionHandler(p Predictor) *PredictionHandler {
	return &PredictionHandler{predictor: p}
}

// PredictRequest is the optional JSON body of POST /predict.
type PredictRequest struct {
	Species string `json:"species"`
}

// Root answers GET / so uptime checks have something to hit.
func (h *PredictionHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Wildlife Threat Prediction API running"})
}

// ListSpecies returns every species name in dataset order.
func (h *PredictionHandler) ListSpecies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"species": h.predictor.Species()})
}

// Predict classifies a species and explains the result. The name comes from
// the species query parameter or, for POST, a JSON body.
func (h *PredictionHandler) Predict(c *gin.Context) {
	species := speciesParam(c)
	if species == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "species parameter is required"})
		return
	}

	prediction, err := h.predictor.Predict(c.Request.Context(), species)
	if err != nil {
		if errors.Is(err, services.ErrSpeciesNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": NotFoundMessage})
			return
		}
		logger.Error("Prediction failed", zap.String("species", species), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
		return
	}

	c.JSON(http.StatusOK, prediction)
}

// SpeciesImage returns the encyclopedia thumbnail for a species.
func (h *PredictionHandler) SpeciesImage(c *gin.Context) {
	species := speciesParam(c)
	if species == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "species parameter is required"})
		return
	}

	url, err := h.predictor.Thumbnail(c.Request.Context(), species)
	if err != nil {
		if errors.Is(err, services.ErrSpeciesNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": NotFoundMessage})
			return
		}
		// A missing image is not worth failing the page over.
		logger.Warn("Thumbnail lookup failed", zap.String("species", species), zap.Error(err))
		url = ""
	}

	c.JSON(http.StatusOK, gin.H{"species": species, "image_url": url})
}

// ModelInfo describes the trained classifier.
func (h *PredictionHandler) ModelInfo(c *gin.Context) {
	summary := h.predictor.ModelSummary()
	c.JSON(http.StatusOK, gin.H{
		"model":        summary,
		"threatLevels": dataset.Levels,
	})
}

func speciesParam(c *gin.Context) string {
	if s := strings.TrimSpace(c.Query("species")); s != "" {
		return s
	}
	if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
		var req PredictRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			return strings.TrimSpace(req.Species)
		}
	}
	return ""
}
