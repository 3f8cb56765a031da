// Package ratelimit enforces per-endpoint sliding-window quotas and blocks
// clients that hammer the service.
package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gcbaptista/space-chatbot/internal/clock"
	"github.com/gcbaptista/space-chatbot/internal/errors"
	"github.com/gcbaptista/space-chatbot/model"
)

// Reason explains a denial.
type Reason string

const (
	ReasonRateLimited   Reason = "RATE_LIMITED"
	ReasonIPBlocked     Reason = "IP_BLOCKED"
	ReasonAbuseDetected Reason = "ABUSE_DETECTED"
)

const (
	DefaultMax           = 100
	DefaultWindow        = 15 * time.Minute
	ChatMax              = 20
	DefaultBlockDuration = time.Hour
	DefaultBurstWindow   = 60 * time.Second
	DefaultAbuseDivisor  = 3

	topClientsLimit = 10
)

// Policy is a quota of Max requests per Window.
type Policy struct {
	Max    int
	Window time.Duration
}

// Config holds the limiter policies.
type Config struct {
	Default       Policy
	Endpoints     map[string]Policy
	BlockDuration time.Duration
	BurstWindow   time.Duration
	// AbuseDivisor sets the burst threshold to Max/AbuseDivisor requests inside BurstWindow.
	AbuseDivisor int
}

// DefaultConfig returns the stock quotas: 100 requests per 15 minutes globally
// and 20 per 15 minutes on /api/chat.
func DefaultConfig() Config {
	return Config{
		Default: Policy{Max: DefaultMax, Window: DefaultWindow},
		Endpoints: map[string]Policy{
			"/api/chat": {Max: ChatMax, Window: DefaultWindow},
		},
		BlockDuration: DefaultBlockDuration,
		BurstWindow:   DefaultBurstWindow,
		AbuseDivisor:  DefaultAbuseDivisor,
	}
}

// Request describes one incoming request.
type Request struct {
	ClientID  string
	Endpoint  string
	UserAgent string
}

// Decision is the outcome of Allow.
type Decision struct {
	Allowed    bool
	Reason     Reason
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type record struct {
	timestamp time.Time
	endpoint  string
	userAgent string
}

// Limiter tracks request history per client in memory.
type Limiter struct {
	mu      sync.Mutex
	config  Config
	history map[string][]record
	blocks  map[string]time.Time
	clock   clock.Clock
	logger  *slog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(l *Limiter) {
		l.clock = c
	}
}

// WithLogger sets the limiter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// New creates a limiter. Zero values in cfg fall back to DefaultConfig.
func New(cfg Config, opts ...Option) *Limiter {
	defaults := DefaultConfig()
	if cfg.Default.Max <= 0 || cfg.Default.Window <= 0 {
		cfg.Default = defaults.Default
	}
	if cfg.Endpoints == nil {
		cfg.Endpoints = defaults.Endpoints
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = defaults.BlockDuration
	}
	if cfg.BurstWindow <= 0 {
		cfg.BurstWindow = defaults.BurstWindow
	}
	if cfg.AbuseDivisor <= 0 {
		cfg.AbuseDivisor = defaults.AbuseDivisor
	}

	l := &Limiter{
		config:  cfg,
		history: make(map[string][]record),
		blocks:  make(map[string]time.Time),
		clock:   clock.Real{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(slog.String("component", "rate_limiter"))
	return l
}

// ClientID derives a stable client identifier from the remote address and a
// short hash of the user agent.
func ClientID(ip, userAgent string) string {
	if userAgent == "" {
		userAgent = "unknown"
	}
	sum := sha256.Sum256([]byte(userAgent))
	return ip + ":" + hex.EncodeToString(sum[:])[:8]
}

// PolicyFor returns the endpoint policy, or the default when none is configured.
func (l *Limiter) PolicyFor(endpoint string) Policy {
	if p, ok := l.config.Endpoints[endpoint]; ok {
		return p
	}
	return l.config.Default
}

// Allow checks req against the block list and the endpoint quota. Allowed
// requests are recorded; denied requests are not.
func (l *Limiter) Allow(req Request) Decision {
	now := l.clock.Now()
	policy := l.PolicyFor(req.Endpoint)

	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, blocked := l.blocks[req.ClientID]; blocked {
		if now.Before(expiry) {
			return Decision{
				Reason:     ReasonIPBlocked,
				Limit:      policy.Max,
				ResetAt:    expiry,
				RetryAfter: expiry.Sub(now),
			}
		}
		delete(l.blocks, req.ClientID)
	}

	records := l.history[req.ClientID]
	windowStart := now.Add(-policy.Window)
	count := 0
	oldest := now
	for _, r := range records {
		if r.endpoint != req.Endpoint || !r.timestamp.After(windowStart) {
			continue
		}
		count++
		if r.timestamp.Before(oldest) {
			oldest = r.timestamp
		}
	}
	resetAt := oldest.Add(policy.Window)

	if count >= policy.Max {
		burstStart := now.Add(-l.config.BurstWindow)
		burst := 0
		for _, r := range records {
			if r.timestamp.After(burstStart) {
				burst++
			}
		}

		threshold := float64(policy.Max) / float64(l.config.AbuseDivisor)
		if float64(burst) > threshold {
			expiry := now.Add(l.config.BlockDuration)
			l.blocks[req.ClientID] = expiry
			l.logger.Warn("Client blocked for abusive request burst",
				slog.String("client_id", req.ClientID),
				slog.String("endpoint", req.Endpoint),
				slog.Int("burst", burst),
				slog.Duration("block_duration", l.config.BlockDuration))
			return Decision{
				Reason:     ReasonAbuseDetected,
				Limit:      policy.Max,
				ResetAt:    expiry,
				RetryAfter: l.config.BlockDuration,
			}
		}

		return Decision{
			Reason:     ReasonRateLimited,
			Limit:      policy.Max,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}
	}

	l.history[req.ClientID] = append(records, record{
		timestamp: now,
		endpoint:  req.Endpoint,
		userAgent: req.UserAgent,
	})

	return Decision{
		Allowed:   true,
		Limit:     policy.Max,
		Remaining: policy.Max - count - 1,
		ResetAt:   resetAt,
	}
}

// Block blocks clientID for d, or for the configured block duration when d <= 0.
func (l *Limiter) Block(clientID string, d time.Duration) time.Time {
	if d <= 0 {
		d = l.config.BlockDuration
	}
	expiry := l.clock.Now().Add(d)

	l.mu.Lock()
	l.blocks[clientID] = expiry
	l.mu.Unlock()

	l.logger.Info("Client blocked manually", slog.String("client_id", clientID), slog.Time("expires_at", expiry))
	return expiry
}

// Unblock lifts an active block.
func (l *Limiter) Unblock(clientID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.blocks[clientID]; !ok {
		return errors.NewClientNotFoundError(clientID)
	}
	delete(l.blocks, clientID)
	l.logger.Info("Client unblocked", slog.String("client_id", clientID))
	return nil
}

// Reset forgets all history and any block for clientID.
func (l *Limiter) Reset(clientID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, hasHistory := l.history[clientID]
	_, hasBlock := l.blocks[clientID]
	if !hasHistory && !hasBlock {
		return errors.NewClientNotFoundError(clientID)
	}
	delete(l.history, clientID)
	delete(l.blocks, clientID)
	l.logger.Info("Client rate limit state reset", slog.String("client_id", clientID))
	return nil
}

// Sweep drops history older than the longest configured window and expired
// blocks. It returns the number of records and blocks removed.
func (l *Limiter) Sweep() int {
	now := l.clock.Now()
	cutoff := now.Add(-l.longestWindow())

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for clientID, records := range l.history {
		kept := records[:0]
		for _, r := range records {
			if r.timestamp.After(cutoff) {
				kept = append(kept, r)
			}
		}
		removed += len(records) - len(kept)
		if len(kept) == 0 {
			delete(l.history, clientID)
			continue
		}
		l.history[clientID] = kept
	}

	for clientID, expiry := range l.blocks {
		if !now.Before(expiry) {
			delete(l.blocks, clientID)
			removed++
		}
	}

	if removed > 0 {
		l.logger.Debug("Rate limiter sweep", slog.Int("removed", removed), slog.Int("clients", len(l.history)))
	}
	return removed
}

func (l *Limiter) longestWindow() time.Duration {
	longest := l.config.Default.Window
	for _, p := range l.config.Endpoints {
		if p.Window > longest {
			longest = p.Window
		}
	}
	if l.config.BurstWindow > longest {
		longest = l.config.BurstWindow
	}
	return longest
}

// Stats returns the top clients by volume, active blocks and per-endpoint totals.
func (l *Limiter) Stats() model.RateLimitStats {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	stats := model.RateLimitStats{
		TotalClients:   len(l.history),
		TopClients:     make([]model.ClientRequestCount, 0, len(l.history)),
		BlockedClients: make([]model.BlockedClient, 0, len(l.blocks)),
		EndpointTotals: make(map[string]int),
	}

	for clientID, records := range l.history {
		stats.TotalRequests += len(records)
		stats.TopClients = append(stats.TopClients, model.ClientRequestCount{ClientID: clientID, Requests: len(records)})
		for _, r := range records {
			stats.EndpointTotals[r.endpoint]++
		}
	}
	sort.Slice(stats.TopClients, func(i, j int) bool {
		if stats.TopClients[i].Requests == stats.TopClients[j].Requests {
			return stats.TopClients[i].ClientID < stats.TopClients[j].ClientID
		}
		return stats.TopClients[i].Requests > stats.TopClients[j].Requests
	})
	if len(stats.TopClients) > topClientsLimit {
		stats.TopClients = stats.TopClients[:topClientsLimit]
	}

	for clientID, expiry := range l.blocks {
		if !now.Before(expiry) {
			continue
		}
		stats.BlockedClients = append(stats.BlockedClients, model.BlockedClient{
			ClientID:         clientID,
			ExpiresAt:        expiry,
			RemainingSeconds: int64(expiry.Sub(now).Seconds()),
		})
	}
	sort.Slice(stats.BlockedClients, func(i, j int) bool {
		return stats.BlockedClients[i].ClientID < stats.BlockedClients[j].ClientID
	})
	return stats
}
