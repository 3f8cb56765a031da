// Package api provides validation utilities for API request handling.
package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/space-chatbot/model"
)

const (
	// MaxMessageLength bounds a chat message in runes.
	MaxMessageLength = 1000
	// MaxSessionIDLength bounds a client supplied session id.
	MaxSessionIDLength = 128

	defaultListLimit = 20
	maxListLimit     = 100
	maxBlockDuration = 7 * 24 * time.Hour
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateChatRequest validates a chat request body
func ValidateChatRequest(req *model.ChatRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(req.Message) == "" {
		result.AddError("message", "Message is required")
		return result
	}

	if utf8.RuneCountInString(req.Message) > MaxMessageLength {
		result.AddError("message", fmt.Sprintf("Message cannot exceed %d characters", MaxMessageLength))
	}

	if len(req.SessionID) > MaxSessionIDLength {
		result.AddError("sessionId", fmt.Sprintf("Session ID cannot exceed %d characters", MaxSessionIDLength))
	}

	return result
}

// ValidateLimit parses an optional limit query parameter. Missing values
// default to 20 and values above 100 are clamped.
func ValidateLimit(raw string) (int, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	if raw == "" {
		return defaultListLimit, result
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		result.AddError("limit", "Limit must be a positive integer")
		return 0, result
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, result
}

// ClientActionRequest is the body of the rate limit administration endpoints.
type ClientActionRequest struct {
	ClientID string `json:"clientId"`
	// Duration is a Go duration string such as "30m". Only used by block.
	Duration string `json:"duration,omitempty"`
}

// ValidateClientAction validates a rate limit administration request and
// returns the parsed block duration (zero means the configured default).
func ValidateClientAction(req *ClientActionRequest) (time.Duration, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(req.ClientID) == "" {
		result.AddError("clientId", "Client ID is required")
	}

	if req.Duration == "" {
		return 0, result
	}

	d, err := time.ParseDuration(req.Duration)
	switch {
	case err != nil:
		result.AddError("duration", "Duration must be a valid duration such as 30m")
	case d <= 0:
		result.AddError("duration", "Duration must be positive")
	case d > maxBlockDuration:
		result.AddError("duration", "Duration cannot exceed 168h")
	}
	return d, result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}
