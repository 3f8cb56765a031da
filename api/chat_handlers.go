package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/gcbaptista/space-chatbot/internal/errors"
	"github.com/gcbaptista/space-chatbot/model"
)

// ChatHandler answers one chat message.
// Request Body: model.ChatRequest
func (api *API) ChatHandler(c *gin.Context) {
	start := time.Now()

	var req model.ChatRequest
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateChatRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	resp, err := api.chat.Process(c.Request.Context(), req)
	if err != nil {
		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			result := &ValidationResult{Valid: true}
			result.AddError(validationErr.Field, validationErr.Message)
			SendValidationError(c, result)
			return
		}

		api.logger.Error("Chat request failed",
			slog.String("session_id", req.SessionID),
			slog.String("error", err.Error()))
		SendChatError(c, err, time.Since(start))
		return
	}

	c.JSON(http.StatusOK, resp)
}
