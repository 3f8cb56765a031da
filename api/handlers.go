package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/gcbaptista/space-chatbot/internal/metrics"
	"github.com/gcbaptista/space-chatbot/services"
)

// Dependencies are the services the HTTP layer talks to. Limiter, Jobs and
// Metrics are optional.
type Dependencies struct {
	Chat      services.ChatProcessor
	Retriever services.Retriever
	Cache     services.ResponseCache
	Analytics services.AnalyticsSink
	Limiter   services.RateLimiter
	Jobs      services.JobScheduler
	Metrics   *metrics.Metrics
}

// RouterConfig holds HTTP layer settings.
type RouterConfig struct {
	ServiceName  string
	MaxBodyBytes int64
	CORSOrigins  []string
	Tracing      bool
}

// API holds dependencies for API handlers.
type API struct {
	chat      services.ChatProcessor
	retriever services.Retriever
	cache     services.ResponseCache
	analytics services.AnalyticsSink
	limiter   services.RateLimiter
	jobs      services.JobScheduler
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(deps Dependencies, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		chat:      deps.Chat,
		retriever: deps.Retriever,
		cache:     deps.Cache,
		analytics: deps.Analytics,
		limiter:   deps.Limiter,
		jobs:      deps.Jobs,
		metrics:   deps.Metrics,
		logger:    logger.With(slog.String("component", "api")),
	}
}

// SetupRoutes defines all the API routes for the chatbot.
func SetupRoutes(router *gin.Engine, api *API, cfg RouterConfig) {
	if cfg.Tracing {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.CORSOrigins))
	if cfg.MaxBodyBytes > 0 {
		router.Use(RequestSizeLimitMiddleware(cfg.MaxBodyBytes))
	}

	// Operational routes are never rate limited
	router.GET("/health", api.HealthCheckHandler)
	if api.metrics != nil {
		router.GET("/metrics", gin.WrapH(api.metrics.Handler()))
	}

	apiRoutes := router.Group("/api")
	if api.limiter != nil {
		apiRoutes.Use(RateLimitMiddleware(api.limiter, api.metrics, api.logger))
	}
	{
		apiRoutes.POST("/chat", api.ChatHandler)

		apiRoutes.GET("/analytics", api.GetAnalyticsHandler)
		apiRoutes.GET("/analytics/queries", api.GetRecentQueriesHandler)

		apiRoutes.GET("/knowledge/search", api.KnowledgeSearchHandler)

		cacheRoutes := apiRoutes.Group("/cache")
		{
			cacheRoutes.GET("/stats", api.GetCacheStatsHandler)
			cacheRoutes.GET("/entries", api.GetCacheEntriesHandler)
			cacheRoutes.POST("/clear", api.ClearCacheHandler)
		}

		if api.jobs != nil {
			apiRoutes.GET("/jobs", api.ListJobsHandler)
			apiRoutes.GET("/jobs/metrics", api.GetJobMetricsHandler)
			apiRoutes.POST("/jobs/:jobType/run", api.RunJobHandler)
		}
	}

	// Limiter administration sits outside the limiter so that a blocked
	// operator address can still unblock clients.
	if api.limiter != nil {
		limitRoutes := router.Group("/api/ratelimit")
		{
			limitRoutes.GET("/stats", api.GetRateLimitStatsHandler)
			limitRoutes.POST("/block", api.BlockClientHandler)
			limitRoutes.POST("/unblock", api.UnblockClientHandler)
			limitRoutes.POST("/reset", api.ResetClientHandler)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		SendError(c, http.StatusNotFound, ErrorCodeInvalidRequest, "Route not found: "+c.Request.URL.Path)
	})
}
