package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultSearchK = 5
	maxSearchK     = 20
)

// KnowledgeSearchHandler exposes raw retrieval results for diagnostics.
// Query: q (required), k (default 5, max 20)
func (api *API) KnowledgeSearchHandler(c *gin.Context) {
	result := &ValidationResult{Valid: true}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		result.AddError("q", "Query parameter 'q' is required")
	}

	k := defaultSearchK
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxSearchK {
			result.AddError("k", "k must be an integer between 1 and 20")
		} else {
			k = parsed
		}
	}

	if result.HasErrors() {
		details := make([]ErrorDetail, len(result.Errors))
		for i, err := range result.Errors {
			details[i] = ErrorDetail{Field: err.Field, Message: err.Message, Code: "VALIDATION_ERROR"}
		}
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid knowledge search query", details...)
		return
	}

	stats := api.retriever.Stats()
	if !stats.Ready {
		SendError(c, http.StatusServiceUnavailable, ErrorCodeIndexNotReady, "Knowledge index is not initialized")
		return
	}

	hits := api.retriever.Search(query, k)
	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"hits":  hits,
		"total": len(hits),
		"index": stats,
	})
}
