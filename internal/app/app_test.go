package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/space-chatbot/config"
	"github.com/gcbaptista/space-chatbot/model"
)

// offlineConfig disables every outbound dependency.
func offlineConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	cfg.LLM.APIKey = ""
	cfg.Providers.NASA.Enabled = false
	cfg.Providers.SolarSystem.Enabled = false
	cfg.Providers.Wikipedia.Enabled = false
	return cfg
}

func TestBuildWiresServices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := Build(offlineConfig(), logger)
	require.NoError(t, err)

	assert.True(t, c.Index.Stats().Ready)
	require.NotNil(t, c.Limiter)

	jobTypes := make([]model.JobType, 0, 3)
	for _, job := range c.Jobs.Jobs() {
		jobTypes = append(jobTypes, job.Type)
	}
	assert.ElementsMatch(t, []model.JobType{
		model.JobTypeCacheSweep,
		model.JobTypeRateLimitSweep,
		model.JobTypeSessionSweep,
	}, jobTypes)

	body := strings.NewReader(`{"message":"Sao Hỏa có gì đặc biệt?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), string(model.MethodTemplateGeneration))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestBuildWithoutRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := offlineConfig()
	cfg.RateLimit.Enabled = false

	c, err := Build(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Nil(t, c.Limiter)
	assert.Len(t, c.Jobs.Jobs(), 2)

	w := httptest.NewRecorder()
	c.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ratelimit/stats", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuildTrustedProxies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	clientIP := func(c *Components) string {
		c.Router.GET("/whoami", func(ctx *gin.Context) { ctx.String(http.StatusOK, ctx.ClientIP()) })
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.RemoteAddr = "10.0.0.5:4321"
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		w := httptest.NewRecorder()
		c.Router.ServeHTTP(w, req)
		return w.Body.String()
	}

	t.Run("forwarded header ignored by default", func(t *testing.T) {
		c, err := Build(offlineConfig(), logger)
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.5", clientIP(c))
	})

	t.Run("forwarded header honored from configured proxy", func(t *testing.T) {
		cfg := offlineConfig()
		cfg.Server.TrustedProxies = []string{"10.0.0.0/8"}
		c, err := Build(cfg, logger)
		require.NoError(t, err)
		assert.Equal(t, "203.0.113.9", clientIP(c))
	})

	t.Run("invalid proxy rejected", func(t *testing.T) {
		cfg := offlineConfig()
		cfg.Server.TrustedProxies = []string{"not-an-address"}
		_, err := Build(cfg, logger)
		assert.ErrorContains(t, err, "set trusted proxies")
	})
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(config.LogConfig{Level: slog.LevelInfo, Format: config.LogFormatJSON}, &buf).Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	buf.Reset()
	NewLogger(config.LogConfig{Level: slog.LevelWarn, Format: config.LogFormatText}, &buf).Info("hidden")
	assert.Empty(t, buf.String())
}

func TestRunStopsWhenContextIsCancelled(t *testing.T) {
	cfg := offlineConfig()
	cfg.Server.Port = 18089
	cfg.Server.ShutdownTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, WithConfig(cfg), WithOutput(io.Discard))
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunRequiresConfig(t *testing.T) {
	err := Run(context.Background())
	assert.ErrorContains(t, err, "config is required")
}
