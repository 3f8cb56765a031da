package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/space-chatbot/internal/clock"
	"github.com/gcbaptista/space-chatbot/internal/errors"
)

const chatEndpoint = "/api/chat"

func newTestLimiter() (*Limiter, *clock.Fake) {
	fake := clock.NewFake(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	return New(DefaultConfig(), WithClock(fake)), fake
}

func chatRequest(client string) Request {
	return Request{ClientID: client, Endpoint: chatEndpoint, UserAgent: "test-agent"}
}

func TestClientID(t *testing.T) {
	a := ClientID("10.0.0.1", "Mozilla/5.0")
	b := ClientID("10.0.0.1", "curl/8.0")

	assert.Equal(t, a, ClientID("10.0.0.1", "Mozilla/5.0"))
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "10.0.0.1:")
	assert.Len(t, a, len("10.0.0.1:")+8)
	assert.Equal(t, ClientID("10.0.0.1", ""), ClientID("10.0.0.1", "unknown"))
}

func TestPolicyFallsBackToDefault(t *testing.T) {
	l, _ := newTestLimiter()

	assert.Equal(t, Policy{Max: 20, Window: 15 * time.Minute}, l.PolicyFor(chatEndpoint))
	assert.Equal(t, Policy{Max: 100, Window: 15 * time.Minute}, l.PolicyFor("/api/analytics"))
}

func TestWindowAllowsExactlyMax(t *testing.T) {
	l, fake := newTestLimiter()

	// Spread requests so the burst threshold is never crossed.
	for i := 1; i <= 20; i++ {
		d := l.Allow(chatRequest("c1"))
		require.True(t, d.Allowed, "request %d should be allowed", i)
		assert.Equal(t, 20-i, d.Remaining)
		assert.Equal(t, 20, d.Limit)
		fake.Advance(40 * time.Second)
	}

	d := l.Allow(chatRequest("c1"))
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonRateLimited, d.Reason)
	assert.True(t, d.RetryAfter > 0)

	// The first request was made 800s ago; it leaves the window after 900s.
	fake.Advance(100 * time.Second)
	d = l.Allow(chatRequest("c1"))
	assert.True(t, d.Allowed)
}

func TestDeniedRequestsAreNotRecorded(t *testing.T) {
	l, fake := newTestLimiter()
	for i := 0; i < 20; i++ {
		l.Allow(chatRequest("c1"))
		fake.Advance(40 * time.Second)
	}
	for i := 0; i < 3; i++ {
		assert.False(t, l.Allow(chatRequest("c1")).Allowed)
	}

	assert.Equal(t, 20, l.Stats().TotalRequests)
}

func TestEndpointsHaveIndependentWindows(t *testing.T) {
	l, fake := newTestLimiter()
	for i := 0; i < 20; i++ {
		l.Allow(chatRequest("c1"))
		fake.Advance(40 * time.Second)
	}

	assert.False(t, l.Allow(chatRequest("c1")).Allowed)
	d := l.Allow(Request{ClientID: "c1", Endpoint: "/api/analytics"})
	assert.True(t, d.Allowed)
	assert.Equal(t, 99, d.Remaining)
}

func TestAbuseEscalation(t *testing.T) {
	l, fake := newTestLimiter()

	// 12 spread requests, then 8 inside one minute.
	for i := 0; i < 12; i++ {
		require.True(t, l.Allow(chatRequest("abuser")).Allowed)
		fake.Advance(40 * time.Second)
	}
	for i := 0; i < 8; i++ {
		require.True(t, l.Allow(chatRequest("abuser")).Allowed)
		fake.Advance(time.Second)
	}

	d := l.Allow(chatRequest("abuser"))
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonAbuseDetected, d.Reason)
	assert.Equal(t, time.Hour, d.RetryAfter)

	// Blocked on every endpoint until expiry.
	fake.Advance(20 * time.Minute)
	d = l.Allow(Request{ClientID: "abuser", Endpoint: "/api/analytics"})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonIPBlocked, d.Reason)
	assert.Equal(t, 40*time.Minute, d.RetryAfter)

	stats := l.Stats()
	require.Len(t, stats.BlockedClients, 1)
	assert.Equal(t, "abuser", stats.BlockedClients[0].ClientID)

	// The block expires lazily and the old window has passed too.
	fake.Advance(41 * time.Minute)
	assert.True(t, l.Allow(chatRequest("abuser")).Allowed)
}

func TestAbuseDivisorIsConfigurable(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.Endpoints = map[string]Policy{chatEndpoint: {Max: 6, Window: time.Minute}}
	cfg.AbuseDivisor = 1
	l := New(cfg, WithClock(fake))

	for i := 0; i < 6; i++ {
		require.True(t, l.Allow(chatRequest("c1")).Allowed)
	}
	// 6 requests in the burst window does not exceed 6/1.
	assert.Equal(t, ReasonRateLimited, l.Allow(chatRequest("c1")).Reason)
}

func TestAdminOperations(t *testing.T) {
	l, fake := newTestLimiter()

	expiry := l.Block("c1", 0)
	assert.Equal(t, fake.Now().Add(time.Hour), expiry)
	assert.Equal(t, ReasonIPBlocked, l.Allow(chatRequest("c1")).Reason)

	require.NoError(t, l.Unblock("c1"))
	assert.True(t, l.Allow(chatRequest("c1")).Allowed)

	err := l.Unblock("c1")
	assert.ErrorIs(t, err, errors.ErrClientNotFound)

	require.NoError(t, l.Reset("c1"))
	assert.Equal(t, 0, l.Stats().TotalClients)
	assert.ErrorIs(t, l.Reset("c1"), errors.ErrClientNotFound)
}

func TestSweep(t *testing.T) {
	l, fake := newTestLimiter()

	l.Allow(chatRequest("old"))
	l.Block("blocked", 10*time.Minute)
	fake.Advance(14 * time.Minute)
	l.Allow(chatRequest("recent"))
	fake.Advance(2 * time.Minute)

	removed := l.Sweep()
	assert.Equal(t, 2, removed, "one stale record and one expired block")

	stats := l.Stats()
	assert.Equal(t, 1, stats.TotalClients)
	assert.Empty(t, stats.BlockedClients)
	assert.Equal(t, map[string]int{chatEndpoint: 1}, stats.EndpointTotals)
}

func TestStatsTopClients(t *testing.T) {
	l, _ := newTestLimiter()
	for i := 0; i < 3; i++ {
		l.Allow(chatRequest("busy"))
	}
	l.Allow(Request{ClientID: "quiet", Endpoint: "/api/analytics"})

	stats := l.Stats()
	assert.Equal(t, 2, stats.TotalClients)
	assert.Equal(t, 4, stats.TotalRequests)
	require.Len(t, stats.TopClients, 2)
	assert.Equal(t, "busy", stats.TopClients[0].ClientID)
	assert.Equal(t, 3, stats.TopClients[0].Requests)
	assert.Equal(t, map[string]int{chatEndpoint: 3, "/api/analytics": 1}, stats.EndpointTotals)
}
