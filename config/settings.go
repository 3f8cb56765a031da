// Package config loads the service configuration from YAML with environment
// variable expansion, fills defaults and validates the result.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
	Providers ProvidersConfig `yaml:"providers"`
	Sessions  SessionConfig   `yaml:"sessions"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"server", &c.Server},
		{"log", &c.Log},
		{"cache", &c.Cache},
		{"ratelimit", &c.RateLimit},
		{"retrieval", &c.Retrieval},
		{"llm", &c.LLM},
		{"providers", &c.Providers},
		{"sessions", &c.Sessions},
		{"tracing", &c.Tracing},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Mode            string        `yaml:"mode"` // gin mode: release, debug or test
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers are honored. Empty means the peer address is the client.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Address returns the listen address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Mode, validation.Required, validation.In("release", "debug", "test")),
		validation.Field(&c.MaxBodyBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.ShutdownTimeout, validation.Required),
	)
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  slog.Level `yaml:"level"`
	Format string     `yaml:"format"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.Required, validation.In(LogFormatJSON, LogFormatText)),
	)
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	MaxSize         int           `yaml:"max_size"`
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxSize, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required),
		validation.Field(&c.CleanupInterval, validation.Required),
	)
}

// PolicyConfig is one rate limit quota.
type PolicyConfig struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// Validate validates the policy.
func (c PolicyConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Max, validation.Required, validation.Min(1)),
		validation.Field(&c.Window, validation.Required),
	)
}

// RateLimitConfig holds limiter settings. Endpoints maps a route path to its quota.
type RateLimitConfig struct {
	Enabled         bool                    `yaml:"enabled"`
	Default         PolicyConfig            `yaml:"default"`
	Endpoints       map[string]PolicyConfig `yaml:"endpoints"`
	BlockDuration   time.Duration           `yaml:"block_duration"`
	BurstWindow     time.Duration           `yaml:"burst_window"`
	AbuseDivisor    int                     `yaml:"abuse_divisor"`
	CleanupInterval time.Duration           `yaml:"cleanup_interval"`
}

// Validate validates the limiter configuration.
func (c *RateLimitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Default),
		validation.Field(&c.Endpoints),
		validation.Field(&c.BlockDuration, validation.Required),
		validation.Field(&c.BurstWindow, validation.Required),
		validation.Field(&c.AbuseDivisor, validation.Required, validation.Min(1)),
		validation.Field(&c.CleanupInterval, validation.Required),
	)
}

// RetrievalConfig holds lexical index settings.
type RetrievalConfig struct {
	TopK      int     `yaml:"top_k"`
	Threshold float64 `yaml:"threshold"`
}

// Validate validates the retrieval configuration.
func (c *RetrievalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TopK, validation.Required, validation.Min(1), validation.Max(50)),
		validation.Field(&c.Threshold, validation.Min(0.0), validation.Max(1.0)),
	)
}

// LLMConfig configures the generator. An empty APIKey disables generation.
type LLMConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
}

// Validate validates the generator configuration.
func (c *LLMConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.Temperature, validation.Min(float32(0)), validation.Max(float32(2))),
		validation.Field(&c.MaxTokens, validation.Required, validation.Min(1)),
	)
}

// FetcherConfig holds shared outbound HTTP settings.
type FetcherConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	Backoff           time.Duration `yaml:"backoff"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// Validate validates the fetcher configuration.
func (c FetcherConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.MaxRetries, validation.Min(0), validation.Max(5)),
		validation.Field(&c.RequestsPerSecond, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Min(0)),
	)
}

// NASAConfig configures the NASA open APIs.
type NASAConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	ImagesURL  string `yaml:"images_url"`
	MaxResults int    `yaml:"max_results"`
}

// Validate validates the NASA configuration.
func (c NASAConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxResults, validation.Min(1), validation.Max(20)),
	)
}

// SolarSystemConfig configures the Solar System OpenData API.
type SolarSystemConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// WikipediaConfig configures the encyclopedia summary API.
type WikipediaConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// ProvidersConfig groups the external data providers.
type ProvidersConfig struct {
	Fetcher     FetcherConfig     `yaml:"fetcher"`
	NASA        NASAConfig        `yaml:"nasa"`
	SolarSystem SolarSystemConfig `yaml:"solar_system"`
	Wikipedia   WikipediaConfig   `yaml:"wikipedia"`
}

// Validate validates the provider configuration.
func (c *ProvidersConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Fetcher),
		validation.Field(&c.NASA),
	)
}

// SessionConfig bounds conversation memory.
type SessionConfig struct {
	MaxHistory      int           `yaml:"max_history"`
	EntityTTL       time.Duration `yaml:"entity_ttl"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxHistory, validation.Required, validation.Min(1)),
		validation.Field(&c.EntityTTL, validation.Required),
		validation.Field(&c.IdleTimeout, validation.Required),
		validation.Field(&c.CleanupInterval, validation.Required),
	)
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Exporter    string `yaml:"exporter"`
	ServiceName string `yaml:"service_name"`
	PrettyPrint bool   `yaml:"pretty_print"`
}

// Validate validates the tracing configuration.
func (c *TracingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Exporter, validation.Required, validation.In("stdout", "none")),
		validation.Field(&c.ServiceName, validation.Required),
	)
}

// Default returns the configuration used when no file is present. Secrets are
// read from OPENAI_API_KEY, OPENAI_BASE_URL and NASA_API_KEY.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Mode:            "release",
			MaxBodyBytes:    64 << 10,
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
			TrustedProxies:  []string{},
		},
		Log: LogConfig{
			Level:  slog.LevelInfo,
			Format: LogFormatJSON,
		},
		Cache: CacheConfig{
			MaxSize:         100,
			TTL:             time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Default: PolicyConfig{Max: 100, Window: 15 * time.Minute},
			Endpoints: map[string]PolicyConfig{
				"/api/chat": {Max: 20, Window: 15 * time.Minute},
			},
			BlockDuration:   time.Hour,
			BurstWindow:     time.Minute,
			AbuseDivisor:    3,
			CleanupInterval: 5 * time.Minute,
		},
		Retrieval: RetrievalConfig{
			TopK:      5,
			Threshold: 0.01,
		},
		LLM: LLMConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			BaseURL:     os.Getenv("OPENAI_BASE_URL"),
			Model:       "gpt-4o-mini",
			Timeout:     20 * time.Second,
			Temperature: 0.7,
			MaxTokens:   800,
		},
		Providers: ProvidersConfig{
			Fetcher: FetcherConfig{
				Timeout:           8 * time.Second,
				MaxRetries:        2,
				Backoff:           500 * time.Millisecond,
				RequestsPerSecond: 5,
				Burst:             5,
			},
			NASA: NASAConfig{
				Enabled:    true,
				APIKey:     os.Getenv("NASA_API_KEY"),
				MaxResults: 3,
			},
			SolarSystem: SolarSystemConfig{Enabled: true},
			Wikipedia:   WikipediaConfig{Enabled: true},
		},
		Sessions: SessionConfig{
			MaxHistory:      10,
			EntityTTL:       10 * time.Minute,
			IdleTimeout:     30 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "stdout",
			ServiceName: "space-chatbot",
		},
	}
}

// Load reads a .env file when present, then the YAML file at path with
// environment variables expanded, layered over Default(). A missing file is
// not an error: the defaults are validated and returned.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Warn("Config file not found, using defaults", slog.String("path", path))
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
