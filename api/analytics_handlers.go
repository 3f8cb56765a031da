package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetAnalyticsHandler handles the request to get analytics data
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.analytics.GetDashboardData())
}

// GetRecentQueriesHandler returns the most recent queries, newest first.
// Query: limit (default 20, max 100)
func (api *API) GetRecentQueriesHandler(c *gin.Context) {
	limit, result := ValidateLimit(c.Query("limit"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	queries := api.analytics.RecentQueries(limit)
	c.JSON(http.StatusOK, gin.H{
		"queries": queries,
		"total":   len(queries),
	})
}

// HealthCheckHandler reports liveness and whether the knowledge index is ready
func (api *API) HealthCheckHandler(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	stats := api.retriever.Stats()
	if !stats.Ready {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"service":   "space-chatbot",
		"index":     stats,
		"timestamp": time.Now().Unix(),
	})
}
