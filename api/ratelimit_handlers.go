package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/gcbaptista/space-chatbot/internal/errors"
)

// GetRateLimitStatsHandler returns the rate limiter state
func (api *API) GetRateLimitStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.limiter.Stats())
}

// BlockClientHandler blocks a client.
// Request Body: ClientActionRequest; duration defaults to the configured block duration
func (api *API) BlockClientHandler(c *gin.Context) {
	req, duration, ok := bindClientAction(c)
	if !ok {
		return
	}

	expiresAt := api.limiter.Block(req.ClientID, duration)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Client '" + req.ClientID + "' blocked",
		"client_id":  req.ClientID,
		"expires_at": expiresAt,
	})
}

// UnblockClientHandler lifts an active block.
// Request Body: ClientActionRequest
func (api *API) UnblockClientHandler(c *gin.Context) {
	req, _, ok := bindClientAction(c)
	if !ok {
		return
	}

	if err := api.limiter.Unblock(req.ClientID); err != nil {
		api.sendClientError(c, req.ClientID, "unblock client", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client '" + req.ClientID + "' unblocked"})
}

// ResetClientHandler forgets all rate limit history for a client.
// Request Body: ClientActionRequest
func (api *API) ResetClientHandler(c *gin.Context) {
	req, _, ok := bindClientAction(c)
	if !ok {
		return
	}

	if err := api.limiter.Reset(req.ClientID); err != nil {
		api.sendClientError(c, req.ClientID, "reset client", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client '" + req.ClientID + "' reset"})
}

func bindClientAction(c *gin.Context) (ClientActionRequest, time.Duration, bool) {
	var req ClientActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return req, 0, false
	}

	duration, result := ValidateClientAction(&req)
	if result.HasErrors() {
		SendValidationError(c, result)
		return req, 0, false
	}
	return req, duration, true
}

func (api *API) sendClientError(c *gin.Context, clientID, operation string, err error) {
	if errors.Is(err, apperrors.ErrClientNotFound) {
		SendClientNotFoundError(c, clientID)
		return
	}
	api.logger.Error("Rate limit administration failed",
		slog.String("operation", operation),
		slog.String("client_id", clientID),
		slog.String("error", err.Error()))
	SendInternalError(c, operation, err)
}
