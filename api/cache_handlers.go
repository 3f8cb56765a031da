package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCacheStatsHandler returns the response cache statistics
func (api *API) GetCacheStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.cache.Stats())
}

// GetCacheEntriesHandler lists cached entries, most recently used first.
// Query: limit (default 20, max 100)
func (api *API) GetCacheEntriesHandler(c *gin.Context) {
	limit, result := ValidateLimit(c.Query("limit"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	entries := api.cache.Entries(limit)
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}

// ClearCacheHandler drops every cached response
func (api *API) ClearCacheHandler(c *gin.Context) {
	api.cache.Clear()
	api.logger.Info("Response cache cleared via API")
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared"})
}
