package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.Cache.MaxSize)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 20, cfg.RateLimit.Endpoints["/api/chat"].Max)
	assert.Equal(t, 3, cfg.RateLimit.AbuseDivisor)
	assert.Equal(t, ":8080", cfg.Server.Address())
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoadOverridesAndExpandsEnv(t *testing.T) {
	t.Setenv("CHATBOT_TEST_PORT", "9191")
	path := writeConfig(t, `
server:
  port: ${CHATBOT_TEST_PORT}
log:
  level: debug
  format: text
cache:
  max_size: 5
  ttl: 2m
ratelimit:
  endpoints:
    /api/chat:
      max: 3
      window: 1m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, LogFormatText, cfg.Log.Format)
	assert.Equal(t, 5, cfg.Cache.MaxSize)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, PolicyConfig{Max: 3, Window: time.Minute}, cfg.RateLimit.Endpoints["/api/chat"])
	// untouched sections keep their defaults
	assert.Equal(t, Default().Sessions, cfg.Sessions)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		section string
	}{
		{"bad port", "server:\n  port: 70000\n", "server"},
		{"bad log format", "log:\n  format: xml\n", "log"},
		{"zero cache size", "cache:\n  max_size: -1\n", "cache"},
		{"bad endpoint policy", "ratelimit:\n  endpoints:\n    /api/chat:\n      max: 0\n      window: 1m\n", "ratelimit"},
		{"top k too large", "retrieval:\n  top_k: 500\n", "retrieval"},
		{"unknown exporter", "tracing:\n  exporter: jaeger\n", "tracing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.section)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}
