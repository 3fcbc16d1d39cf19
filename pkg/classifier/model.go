// Package classifier trains the threat-level model: label encoding, SMOTE
// oversampling and a class-weighted random forest.
package classifier

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for inconsistent training data or inference vectors.
var ErrInvalidInput = errors.New("invalid classifier input")

// Options controls training.
type Options struct {
	Trees    int
	MaxDepth int
	Seed     int64
	// Neighbours used by SMOTE.
	K int
	// Balanced weights each class by n_samples / (n_classes * class_count).
	Balanced bool
	// Workers bounds parallel tree training; 0 means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the production training setup.
func DefaultOptions() Options {
	return Options{
		Trees:    400,
		MaxDepth: 14,
		Seed:     42,
		K:        5,
		Balanced: true,
	}
}

// Model is a trained classifier bound to its feature columns. It is read-only
// after Train and safe for concurrent use.
type Model struct {
	columns        []string
	encoder        *LabelEncoder
	forest         *Forest
	opts           Options
	trainingCounts map[string]int
	resampled      int
}

// Summary describes a trained model.
type Summary struct {
	Columns          []string       `json:"columns"`
	Classes          []string       `json:"classes"`
	Trees            int            `json:"trees"`
	MaxDepth         int            `json:"max_depth"`
	Seed             int64          `json:"seed"`
	TrainingCounts   map[string]int `json:"training_counts"`
	ResampledSamples int            `json:"resampled_samples"`
}

// Train oversamples minority classes and fits the forest.
func Train(ctx context.Context, columns []string, X [][]float64, labels []string, opts Options) (*Model, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("%w: no training samples", ErrInvalidInput)
	}
	if len(X) != len(labels) {
		return nil, fmt.Errorf("%w: %d samples but %d labels", ErrInvalidInput, len(X), len(labels))
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no feature columns", ErrInvalidInput)
	}
	for i, row := range X {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: sample %d has %d features, want %d", ErrInvalidInput, i, len(row), len(columns))
		}
	}
	if opts.Trees < 1 || opts.MaxDepth < 1 {
		return nil, fmt.Errorf("%w: trees and max depth must be positive", ErrInvalidInput)
	}

	encoder := FitLabelEncoder(labels)
	y, err := encoder.Transform(labels)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, encoder.Len())
	for _, l := range labels {
		counts[l]++
	}

	rx, ry := SMOTE{K: opts.K, Seed: opts.Seed}.Resample(X, y, encoder.Len())

	forest, err := fitForest(ctx, rx, ry, encoder.Len(), forestParams{
		trees:    opts.Trees,
		maxDepth: opts.MaxDepth,
		seed:     opts.Seed,
		balanced: opts.Balanced,
		workers:  opts.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fit forest: %w", err)
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Model{
		columns:        cols,
		encoder:        encoder,
		forest:         forest,
		opts:           opts,
		trainingCounts: counts,
		resampled:      len(rx),
	}, nil
}

// Predict returns the most probable label. Ties go to the first class in sorted order.
func (m *Model) Predict(vec []float64) (string, error) {
	p, err := m.proba(vec)
	if err != nil {
		return "", err
	}
	return m.encoder.Inverse(argmax(p))
}

// PredictProba returns the class probabilities keyed by label.
func (m *Model) PredictProba(vec []float64) (map[string]float64, error) {
	p, err := m.proba(vec)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(p))
	for i, v := range p {
		out[m.encoder.classes[i]] = v
	}
	return out, nil
}

func (m *Model) proba(vec []float64) ([]float64, error) {
	if len(vec) != len(m.columns) {
		return nil, fmt.Errorf("%w: vector has %d features, want %d", ErrInvalidInput, len(vec), len(m.columns))
	}
	return m.forest.proba(vec), nil
}

// Columns returns the feature columns the model was trained on.
func (m *Model) Columns() []string {
	out := make([]string, len(m.columns))
	copy(out, m.columns)
	return out
}

// Classes returns the labels the model can emit.
func (m *Model) Classes() []string { return m.encoder.Classes() }

// Summary reports the model's shape and training class counts.
func (m *Model) Summary() Summary {
	counts := make(map[string]int, len(m.trainingCounts))
	for k, v := range m.trainingCounts {
		counts[k] = v
	}
	return Summary{
		Columns:          m.Columns(),
		Classes:          m.Classes(),
		Trees:            len(m.forest.trees),
		MaxDepth:         m.forest.MaxDepth(),
		Seed:             m.opts.Seed,
		TrainingCounts:   counts,
		ResampledSamples: m.resampled,
	}
}
