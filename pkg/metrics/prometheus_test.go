package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCounters(t *testing.T) {
	m := New()

	m.ObservePrediction("EN")
	m.ObservePrediction("EN")
	m.ObservePrediction("LC")
	m.ObserveGeneration("definition", "fallback")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("EN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("LC")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("definition", "fallback")))

	m.ObserveTraining(1500*time.Millisecond, 120)
	assert.Equal(t, 1.5, testutil.ToFloat64(m.TrainingDuration))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.TrainingSamples))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObservePrediction("CR")
		m.ObserveGeneration("definition", "remote")
		m.ObserveRetrieval(time.Second, 3)
		m.ObserveTraining(time.Second, 10)
	})
	assert.Nil(t, m.Registry())
	assert.NotNil(t, m.Handler())
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRetrieval(200*time.Millisecond, 4)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "wildlife_evidence_retrieval_seconds")
	assert.Contains(t, string(body), "wildlife_evidence_sentences_count 1")
}
