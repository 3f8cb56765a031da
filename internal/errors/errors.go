package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexNotReady is returned when the lexical index is queried before initialization
	ErrIndexNotReady = errors.New("index not ready")

	// ErrGeneratorUnavailable is returned when no generative model is configured or reachable
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrProviderUnavailable is returned when an external data provider fails
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrNotFound is returned when a provider has no record for the requested item
	ErrNotFound = errors.New("not found")

	// ErrClientNotFound is returned by rate limiter admin operations for unknown clients
	ErrClientNotFound = errors.New("client not found")
)

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ProviderError wraps a failure from an external provider call
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider '%s' failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider '%s' failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderUnavailable
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is a transient gateway error.
func (e *ProviderError) Retryable() bool {
	switch e.StatusCode {
	case 502, 503, 504:
		return true
	}
	return false
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider string, statusCode int, err error) *ProviderError {
	return &ProviderError{Provider: provider, StatusCode: statusCode, Err: err}
}

// ClientNotFoundError represents a rate limiter lookup for an unknown client id
type ClientNotFoundError struct {
	ClientID string
}

func (e *ClientNotFoundError) Error() string {
	return fmt.Sprintf("client with ID '%s' not found", e.ClientID)
}

func (e *ClientNotFoundError) Is(target error) bool {
	return target == ErrClientNotFound
}

// NewClientNotFoundError creates a new ClientNotFoundError
func NewClientNotFoundError(clientID string) *ClientNotFoundError {
	return &ClientNotFoundError{ClientID: clientID}
}
