package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wildlife-threat-api/pkg/classifier"
	"wildlife-threat-api/pkg/dataset"
	"wildlife-threat-api/pkg/explain"
	"wildlife-threat-api/pkg/features"
	"wildlife-threat-api/pkg/logger"
	"wildlife-threat-api/pkg/metrics"
	"wildlife-threat-api/pkg/retrieval"
)

// ErrSpeciesNotFound is returned for names absent from the dataset.
var ErrSpeciesNotFound = errors.New("species not found")

// ThumbnailSource resolves a species image URL.
type ThumbnailSource interface {
	Thumbnail(ctx context.Context, title string) (string, error)
}

// Prediction is the predict response body.
type Prediction struct {
	Species              string              `json:"species"`
	PredictedThreatLevel dataset.ThreatLevel `json:"predicted_threat_level"`
	Probabilities        map[string]float64  `json:"probabilities,omitempty"`
	RAG                  explain.Explanation `json:"rag"`
}

// PredictionService holds everything built at startup: the dataset, the
// feature schema and the trained model. None of it changes after
// NewPredictionService returns, so one instance serves concurrent requests.
type PredictionService struct {
	dataset   *dataset.Dataset
	schema    *features.Schema
	model     *classifier.Model
	retriever *retrieval.Retriever
	explainer *explain.Explainer
	thumbs    ThumbnailSource
	metrics   *metrics.Metrics
}

// NewPredictionService encodes the dataset and trains the model once.
// thumbs and m may be nil.
func NewPredictionService(
	ctx context.Context,
	ds *dataset.Dataset,
	retriever *retrieval.Retriever,
	explainer *explain.Explainer,
	thumbs ThumbnailSource,
	m *metrics.Metrics,
	opts classifier.Options,
) (*PredictionService, error) {
	if ds == nil || retriever == nil || explainer == nil {
		return nil, fmt.Errorf("dataset, retriever and explainer are required")
	}

	schema := features.NewSchema(ds)

	start := time.Now()
	model, err := classifier.Train(ctx, schema.Columns(), schema.Matrix(ds), ds.Labels(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to train classifier: %w", err)
	}
	elapsed := time.Since(start)

	summary := model.Summary()
	m.ObserveTraining(elapsed, summary.ResampledSamples)
	logger.Info("Classifier trained",
		zap.Int("species", ds.Len()),
		zap.Int("features", schema.Width()),
		zap.Int("resampled_samples", summary.ResampledSamples),
		zap.Strings("classes", summary.Classes),
		zap.Int("trees", summary.Trees),
		zap.Duration("duration", elapsed))

	return &PredictionService{
		dataset:   ds,
		schema:    schema,
		model:     model,
		retriever: retriever,
		explainer: explainer,
		thumbs:    thumbs,
		metrics:   m,
	}, nil
}

// Species returns every species name in dataset order.
func (s *PredictionService) Species() []string {
	return s.dataset.Names()
}

// PredictLevel classifies one species without building an explanation.
func (s *PredictionService) PredictLevel(name string) (dataset.ThreatLevel, map[string]float64, error) {
	row, ok := s.dataset.Lookup(name)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrSpeciesNotFound, name)
	}

	vec := s.schema.Encode(row)
	proba, err := s.model.PredictProba(vec)
	if err != nil {
		return "", nil, fmt.Errorf("failed to classify %q: %w", name, err)
	}
	label, err := s.model.Predict(vec)
	if err != nil {
		return "", nil, fmt.Errorf("failed to classify %q: %w", name, err)
	}
	return dataset.ThreatLevel(label), proba, nil
}

// Predict classifies the species, retrieves evidence and explains the result.
func (s *PredictionService) Predict(ctx context.Context, name string) (*Prediction, error) {
	level, proba, err := s.PredictLevel(name)
	if err != nil {
		return nil, err
	}
	s.metrics.ObservePrediction(string(level))

	evidence := s.retriever.Retrieve(ctx, name, s.retriever.TopK())
	explanation := s.explainer.Explain(ctx, name, evidence)

	logger.Info("Prediction served",
		zap.String("species", name),
		zap.String("threat_level", string(level)),
		zap.Int("evidence_sentences", len(evidence.Sentences)))

	return &Prediction{
		Species:              name,
		PredictedThreatLevel: level,
		Probabilities:        proba,
		RAG:                  explanation,
	}, nil
}

// Thumbnail returns an image URL for a known species, "" when there is none.
func (s *PredictionService) Thumbnail(ctx context.Context, name string) (string, error) {
	if _, ok := s.dataset.Lookup(name); !ok {
		return "", fmt.Errorf("%w: %q", ErrSpeciesNotFound, name)
	}
	if s.thumbs == nil {
		return "", nil
	}
	return s.thumbs.Thumbnail(ctx, name)
}

// ModelSummary describes the trained model.
func (s *PredictionService) ModelSummary() classifier.Summary {
	return s.model.Summary()
}

// Columns is the feature schema the model was trained on.
func (s *PredictionService) Columns() []string {
	return s.schema.Columns()
}

// Encode exposes the inference vector for a species.
func (s *PredictionService) Encode(name string) ([]float64, error) {
	row, ok := s.dataset.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSpeciesNotFound, name)
	}
	return s.schema.Encode(row), nil
}
