package api

import (
	"log/slog"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gcbaptista/space-chatbot/internal/metrics"
	"github.com/gcbaptista/space-chatbot/internal/ratelimit"
	"github.com/gcbaptista/space-chatbot/services"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RateLimitResponse is the body of a denied request.
type RateLimitResponse struct {
	Error      string           `json:"error"`
	Reason     ratelimit.Reason `json:"reason"`
	Message    string           `json:"message"`
	RetryAfter int64            `json:"retryAfter"` // seconds
}

var denialMessages = map[ratelimit.Reason]string{
	ratelimit.ReasonRateLimited:   "Bạn đã gửi quá nhiều yêu cầu. Vui lòng thử lại sau.",
	ratelimit.ReasonIPBlocked:     "Địa chỉ của bạn đang bị tạm khóa.",
	ratelimit.ReasonAbuseDetected: "Phát hiện lưu lượng bất thường. Địa chỉ của bạn đã bị tạm khóa.",
}

// RequestIDMiddleware propagates the caller's X-Request-ID or assigns a new one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestSizeLimitMiddleware limits the size of request bodies to prevent memory exhaustion
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// CORSMiddleware adds CORS headers for cross-origin requests. An empty list
// or "*" allows every origin.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0 || slices.Contains(origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RateLimitMiddleware gates requests through the limiter. Allowed requests get
// X-RateLimit-* headers; denied requests get 429 with Retry-After.
func RateLimitMiddleware(limiter services.RateLimiter, m *metrics.Metrics, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		decision := limiter.Allow(ratelimit.Request{
			ClientID:  ratelimit.ClientID(c.ClientIP(), c.GetHeader("User-Agent")),
			Endpoint:  endpoint,
			UserAgent: c.GetHeader("User-Agent"),
		})

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if decision.Allowed {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			m.ObserveRateLimit(endpoint, "allowed")
			c.Next()
			return
		}

		retryAfter := int64(math.Ceil(decision.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		m.ObserveRateLimit(endpoint, strings.ToLower(string(decision.Reason)))
		logger.Warn("Request denied by rate limiter",
			slog.String("endpoint", endpoint),
			slog.String("client_ip", c.ClientIP()),
			slog.String("reason", string(decision.Reason)))

		c.Header("X-RateLimit-Remaining", "0")
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitResponse{
			Error:      "Too many requests",
			Reason:     decision.Reason,
			Message:    denialMessages[decision.Reason],
			RetryAfter: retryAfter,
		})
	}
}
