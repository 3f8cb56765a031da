// Package app wires the chatbot services together and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/space-chatbot/api"
	"github.com/gcbaptista/space-chatbot/config"
	"github.com/gcbaptista/space-chatbot/internal/analytics"
	"github.com/gcbaptista/space-chatbot/internal/cache"
	"github.com/gcbaptista/space-chatbot/internal/jobs"
	"github.com/gcbaptista/space-chatbot/internal/knowledge"
	"github.com/gcbaptista/space-chatbot/internal/llm"
	"github.com/gcbaptista/space-chatbot/internal/metrics"
	"github.com/gcbaptista/space-chatbot/internal/pipeline"
	"github.com/gcbaptista/space-chatbot/internal/providers"
	"github.com/gcbaptista/space-chatbot/internal/ratelimit"
	"github.com/gcbaptista/space-chatbot/internal/search"
	"github.com/gcbaptista/space-chatbot/internal/session"
	"github.com/gcbaptista/space-chatbot/internal/tracing"
	"github.com/gcbaptista/space-chatbot/model"
	"github.com/gcbaptista/space-chatbot/services"
)

type application struct {
	config  *config.Config
	output  io.Writer
	version string
}

// Components holds the constructed services.
type Components struct {
	Index     *search.Index
	Cache     *cache.ResponseCache
	Limiter   *ratelimit.Limiter
	Sessions  *session.Store
	Analytics *analytics.Service
	Pipeline  *pipeline.Pipeline
	Jobs      *jobs.Manager
	Metrics   *metrics.Metrics
	Router    *gin.Engine
}

// NewLogger builds the slog logger described by cfg.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == config.LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Build constructs every service, registers the sweep jobs and the routes.
// The jobs are not started.
func Build(cfg *config.Config, logger *slog.Logger) (*Components, error) {
	c := &Components{Metrics: metrics.New()}

	c.Index = search.NewIndex(knowledge.Documents(),
		search.WithThreshold(cfg.Retrieval.Threshold),
		search.WithLogger(logger))
	if err := c.Index.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize knowledge index: %w", err)
	}

	c.Cache = cache.New(cache.Config{MaxSize: cfg.Cache.MaxSize, TTL: cfg.Cache.TTL}, cache.WithLogger(logger))
	c.Sessions = session.NewStore(session.Config{
		MaxHistory:  cfg.Sessions.MaxHistory,
		EntityTTL:   cfg.Sessions.EntityTTL,
		IdleTimeout: cfg.Sessions.IdleTimeout,
	}, session.WithLogger(logger))
	c.Analytics = analytics.NewService(analytics.WithLogger(logger))

	deps := pipeline.Dependencies{
		Retriever: c.Index,
		Cache:     c.Cache,
		Generator: newGenerator(cfg.LLM, logger),
		Sessions:  c.Sessions,
		Analytics: c.Analytics,
	}
	wireProviders(&deps, cfg.Providers, c.Metrics, logger)

	p, err := pipeline.New(deps,
		pipeline.WithTopK(cfg.Retrieval.TopK),
		pipeline.WithTimeouts(cfg.Providers.Fetcher.Timeout, cfg.LLM.Timeout),
		pipeline.WithMetrics(c.Metrics),
		pipeline.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	c.Pipeline = p

	c.Jobs = jobs.NewManager(jobs.WithLogger(logger), jobs.WithObserver(c.Metrics.ObserveSweep))
	if _, err := c.Jobs.Register(model.JobTypeCacheSweep, cfg.Cache.CleanupInterval, c.Cache.Sweep); err != nil {
		return nil, fmt.Errorf("register cache sweep: %w", err)
	}
	if _, err := c.Jobs.Register(model.JobTypeSessionSweep, cfg.Sessions.CleanupInterval, c.Sessions.Sweep); err != nil {
		return nil, fmt.Errorf("register session sweep: %w", err)
	}

	apiDeps := api.Dependencies{
		Chat:      c.Pipeline,
		Retriever: c.Index,
		Cache:     c.Cache,
		Analytics: c.Analytics,
		Jobs:      c.Jobs,
		Metrics:   c.Metrics,
	}
	if cfg.RateLimit.Enabled {
		c.Limiter = ratelimit.New(rateLimitConfig(cfg.RateLimit), ratelimit.WithLogger(logger))
		if _, err := c.Jobs.Register(model.JobTypeRateLimitSweep, cfg.RateLimit.CleanupInterval, c.Limiter.Sweep); err != nil {
			return nil, fmt.Errorf("register rate limit sweep: %w", err)
		}
		apiDeps.Limiter = c.Limiter
	}

	c.Router = gin.New()
	if err := c.Router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	c.Router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		c.Router.Use(gin.Logger())
	}
	api.SetupRoutes(c.Router, api.NewAPI(apiDeps, logger), api.RouterConfig{
		ServiceName:  cfg.Tracing.ServiceName,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Tracing:      cfg.Tracing.Enabled,
	})

	return c, nil
}

func newGenerator(cfg config.LLMConfig, logger *slog.Logger) services.Generator {
	gen, err := llm.NewOpenAIGenerator(llm.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Timeout:     cfg.Timeout,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, logger)
	if err != nil {
		logger.Warn("Text generation disabled, answers will use templates", slog.String("reason", err.Error()))
		return llm.Disabled{}
	}
	return gen
}

// wireProviders attaches the enabled external providers. Each provider gets
// its own fetcher so that one failing upstream cannot trip another's breaker.
func wireProviders(deps *pipeline.Dependencies, cfg config.ProvidersConfig, m *metrics.Metrics, logger *slog.Logger) {
	fetcher := func(name string) *providers.Fetcher {
		return providers.NewFetcher(providers.FetcherConfig{
			Name:              name,
			Timeout:           cfg.Fetcher.Timeout,
			MaxRetries:        cfg.Fetcher.MaxRetries,
			Backoff:           cfg.Fetcher.Backoff,
			RequestsPerSecond: cfg.Fetcher.RequestsPerSecond,
			Burst:             cfg.Fetcher.Burst,
		},
			providers.WithFetcherLogger(logger),
			providers.WithFailureObserver(m.ObserveProviderFailure))
	}

	if cfg.NASA.Enabled {
		deps.Astronomy = providers.NewNASA(providers.NASAConfig{
			APIKey:     cfg.NASA.APIKey,
			BaseURL:    cfg.NASA.BaseURL,
			ImagesURL:  cfg.NASA.ImagesURL,
			MaxResults: cfg.NASA.MaxResults,
		}, fetcher("nasa"))
	}
	if cfg.SolarSystem.Enabled {
		deps.Celestial = providers.NewSolarSystem(cfg.SolarSystem.BaseURL, cfg.SolarSystem.APIKey, fetcher("solarsystem"))
	}
	if cfg.Wikipedia.Enabled {
		deps.Encyclopedia = providers.NewWikipedia(cfg.Wikipedia.BaseURL, fetcher("wikipedia"))
	}
}

func rateLimitConfig(cfg config.RateLimitConfig) ratelimit.Config {
	endpoints := make(map[string]ratelimit.Policy, len(cfg.Endpoints))
	for path, p := range cfg.Endpoints {
		endpoints[path] = ratelimit.Policy{Max: p.Max, Window: p.Window}
	}
	return ratelimit.Config{
		Default:       ratelimit.Policy{Max: cfg.Default.Max, Window: cfg.Default.Window},
		Endpoints:     endpoints,
		BlockDuration: cfg.BlockDuration,
		BurstWindow:   cfg.BurstWindow,
		AbuseDivisor:  cfg.AbuseDivisor,
	}
}

// Run starts the application with the given options and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{output: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := NewLogger(cfg.Log, app.output)
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.Mode)

	shutdownTracing, err := tracing.Init(tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		Exporter:       cfg.Tracing.Exporter,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: app.version,
		PrettyPrint:    cfg.Tracing.PrettyPrint,
	}, app.output)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	components, err := Build(cfg, logger)
	if err != nil {
		return err
	}

	stats := components.Index.Stats()
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.Server.Address()),
		slog.Int("documents", stats.DocumentCount),
		slog.Int("vocabulary", stats.VocabularySize),
		slog.Bool("rate_limit", cfg.RateLimit.Enabled),
		slog.Bool("tracing", cfg.Tracing.Enabled),
		slog.String("log_level", cfg.Log.Level.String()))

	components.Jobs.Start()

	httpServer := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: components.Router,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		components.Jobs.Stop()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("Tracer shutdown error", slog.String("error", err.Error()))
		}

		logger.Info("Server stopped")
		return nil
	})

	return g.Wait()
}
