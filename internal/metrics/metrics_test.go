package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/space-chatbot/model"
)

func TestObserveCounters(t *testing.T) {
	m := New()

	m.ObserveChat(model.MethodTemplateGeneration, false, true, 120*time.Millisecond)
	m.ObserveChat(model.MethodTemplateGeneration, false, true, 80*time.Millisecond)
	m.ObserveCacheLookup(true)
	m.ObserveCacheLookup(false)
	m.ObserveCacheLookup(false)
	m.ObserveRateLimit("/api/chat", "RATE_LIMITED")
	m.ObserveProviderFailure("nasa", errors.New("timeout"))
	m.ObserveSweep(model.JobTypeCacheSweep, time.Millisecond, 4, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChatRequestsTotal.WithLabelValues("template_generation", "false", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitDecisions.WithLabelValues("/api/chat", "RATE_LIMITED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderFailures.WithLabelValues("nasa")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SweepRemovedTotal.WithLabelValues("cache_sweep")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveChat(model.MethodFinalFallback, false, false, time.Second)
		m.ObserveStage("retrieve", time.Millisecond)
		m.ObserveCacheLookup(true)
		m.ObserveRateLimit("/api/chat", "allowed")
		m.ObserveProviderFailure("wikipedia", nil)
		m.ObserveSweep(model.JobTypeSessionSweep, 0, 0, true)
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveStage("retrieve", 2*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "space_chatbot_pipeline_stage_duration_seconds")
}
