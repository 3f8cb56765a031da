package model

import "time"

// ClientRequestCount reports request volume for one client.
type ClientRequestCount struct {
	ClientID string `json:"client_id"`
	Requests int    `json:"requests"`
}

// BlockedClient reports an active block.
type BlockedClient struct {
	ClientID         string    `json:"client_id"`
	ExpiresAt        time.Time `json:"expires_at"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// RateLimitStats is a snapshot of the rate limiter state.
type RateLimitStats struct {
	TotalClients   int                  `json:"total_clients"`
	TotalRequests  int                  `json:"total_requests"`
	TopClients     []ClientRequestCount `json:"top_clients"`
	BlockedClients []BlockedClient      `json:"blocked_clients"`
	EndpointTotals map[string]int       `json:"endpoint_totals"`
}
