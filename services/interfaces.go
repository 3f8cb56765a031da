package services

import (
	"context"
	"time"

	"github.com/gcbaptista/space-chatbot/internal/jobs"
	"github.com/gcbaptista/space-chatbot/internal/ratelimit"
	"github.com/gcbaptista/space-chatbot/internal/search"
	"github.com/gcbaptista/space-chatbot/internal/session"
	"github.com/gcbaptista/space-chatbot/model"
)

// Retriever answers top-K lexical queries over the knowledge base.
type Retriever interface {
	Retrieve(query string, topK int) []model.Document
	Search(query string, topK int) []search.ScoredDocument
	Stats() search.IndexStats
}

// ResponseCache stores reusable chat responses.
type ResponseCache interface {
	Get(query string, contexts []model.ContextRecord) (model.ChatResponse, bool)
	Set(query string, contexts []model.ContextRecord, resp model.ChatResponse) bool
	Clear()
	Stats() model.CacheStats
	Entries(limit int) []model.CacheEntryInfo
}

// Generator produces text from a prompt. It may fail at any time.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AstronomyProvider returns contexts from a keyword-routed astronomy data source.
type AstronomyProvider interface {
	Enrich(ctx context.Context, query string) ([]model.ContextRecord, error)
}

// CelestialProvider recognizes catalog names and returns structured body data.
type CelestialProvider interface {
	Recognize(query string) (id, displayName string, ok bool)
	Lookup(ctx context.Context, id string) (*model.CelestialBody, error)
}

// EncyclopediaProvider summarizes a topic.
type EncyclopediaProvider interface {
	Summarize(ctx context.Context, topic string) (*model.EncyclopediaSummary, error)
}

// SessionStore keeps conversation history for reference resolution.
type SessionStore interface {
	ResolveReferences(sessionID, text string) session.Resolution
	AddToHistory(sessionID, userText, botResponse string, contexts []string)
	BuildContextualPrompt(basePrompt, sessionID, text string) string
}

// AnalyticsSink records query outcomes and exposes aggregates.
type AnalyticsSink interface {
	TrackQuery(query string, responseTime time.Duration, method model.Method, contextsUsed int, success bool)
	GetDashboardData() model.AnalyticsDashboard
	RecentQueries(limit int) []model.QueryEvent
}

// ChatProcessor answers chat messages.
type ChatProcessor interface {
	Process(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error)
}

// RateLimiter gates requests and exposes administration of client state.
type RateLimiter interface {
	Allow(req ratelimit.Request) ratelimit.Decision
	Block(clientID string, d time.Duration) time.Time
	Unblock(clientID string) error
	Reset(clientID string) error
	Stats() model.RateLimitStats
}

// JobScheduler reports on the periodic sweep jobs.
type JobScheduler interface {
	Jobs() []model.Job
	GetMetrics() jobs.JobMetricsData
	RunNow(jobType model.JobType) (int, error)
}
