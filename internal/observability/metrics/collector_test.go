package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	c := NewCollector()
	require.NotNil(t, c)
	require.NotNil(t, c.StageDuration)
	require.NotNil(t, c.Turns)

	// Each collector has its own registry, so building several must not panic.
	assert.NotPanics(t, func() { NewCollector() })
}

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.Turns.Inc()
	c.Turns.Inc()
	c.StageErrors.WithLabelValues(StageRetrieve).Inc()
	c.IngestedChunks.Add(42)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.Turns))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.StageErrors.WithLabelValues(StageRetrieve)))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.StageErrors.WithLabelValues(StageGenerate)))
	assert.Equal(t, float64(42), testutil.ToFloat64(c.IngestedChunks))
}

func TestCollectorHandlerServesMetrics(t *testing.T) {
	c := NewCollector()
	c.Turns.Inc()
	c.StageDuration.WithLabelValues(StageGenerate).Observe(0.25)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	c.Handler().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "rag_turns_total 1")
	assert.Contains(t, body, "rag_stage_duration_seconds")
	assert.Contains(t, body, "ingested_chunks_total")
}
