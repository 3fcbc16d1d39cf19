package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the service collectors and the registry they are exposed from.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Predictions       *prometheus.CounterVec
	Generations       *prometheus.CounterVec
	RetrievalDuration prometheus.Histogram
	EvidenceSentences prometheus.Histogram
	TrainingDuration  prometheus.Gauge
	TrainingSamples   prometheus.Gauge
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildlife_predictions_total",
				Help: "Predictions served, by predicted threat level",
			},
			[]string{"threat_level"},
		),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildlife_explanations_total",
				Help: "Explanation facets produced, by facet and source (remote or fallback)",
			},
			[]string{"facet", "source"},
		),
		RetrievalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wildlife_evidence_retrieval_seconds",
				Help:    "Evidence retrieval duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
		EvidenceSentences: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wildlife_evidence_sentences",
				Help:    "Number of evidence sentences returned per retrieval",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
			},
		),
		TrainingDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wildlife_model_training_seconds",
				Help: "Duration of the startup training run",
			},
		),
		TrainingSamples: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wildlife_model_training_samples",
				Help: "Rows in the resampled training matrix",
			},
		),
	}

	m.registry.MustRegister(
		m.Predictions,
		m.Generations,
		m.RetrievalDuration,
		m.EvidenceSentences,
		m.TrainingDuration,
		m.TrainingSamples,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObservePrediction(level string) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(level).Inc()
}

func (m *Metrics) ObserveGeneration(facet, source string) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(facet, source).Inc()
}

func (m *Metrics) ObserveRetrieval(d time.Duration, sentences int) {
	if m == nil {
		return
	}
	m.RetrievalDuration.Observe(d.Seconds())
	m.EvidenceSentences.Observe(float64(sentences))
}

func (m *Metrics) ObserveTraining(d time.Duration, samples int) {
	if m == nil {
		return
	}
	m.TrainingDuration.Set(d.Seconds())
	m.TrainingSamples.Set(float64(samples))
}
