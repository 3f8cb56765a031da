// Package cache stores chat responses keyed by a normalized query fingerprint.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gcbaptista/space-chatbot/internal/clock"
	"github.com/gcbaptista/space-chatbot/internal/tokenizer"
	"github.com/gcbaptista/space-chatbot/model"
)

const (
	DefaultMaxSize = 100
	DefaultTTL     = time.Hour

	keyLength = 16 // hex characters kept from the SHA-256 digest
)

// terminalPunctuation matches trailing punctuation that does not change the meaning of a question.
var terminalPunctuation = regexp.MustCompile(`[\s?!.,;:…。]+$`)

// variantSpellings maps old-style tone placement and common alternates to one spelling.
var variantSpellings = strings.NewReplacer(
	"hoả", "hỏa",
	"hoá", "hóa",
	"hoà", "hòa",
	"thuỷ", "thủy",
	"thuý", "thúy",
	"tuỳ", "tùy",
	"mộc tinh", "sao mộc",
	"hỏa tinh", "sao hỏa",
	"kim tinh", "sao kim",
	"thổ tinh", "sao thổ",
)

// Config holds the cache limits.
type Config struct {
	MaxSize int
	TTL     time.Duration
}

type entry struct {
	key          string
	query        string
	response     model.ChatResponse
	createdAt    time.Time
	lastAccessed time.Time
	accessCount  int
}

// ResponseCache is an in-memory LRU cache with TTL expiry.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	maxSize int
	ttl     time.Duration
	hits    int64
	misses  int64
	clock   clock.Clock
	logger  *slog.Logger
}

// Option configures a ResponseCache.
type Option func(*ResponseCache)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(rc *ResponseCache) {
		rc.clock = c
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rc *ResponseCache) {
		rc.logger = logger
	}
}

// New creates a cache. Zero values in cfg fall back to the defaults.
func New(cfg Config, opts ...Option) *ResponseCache {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	rc := &ResponseCache{
		entries: make(map[string]*entry),
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		clock:   clock.Real{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(rc)
	}
	rc.logger = rc.logger.With(slog.String("component", "response_cache"))
	return rc
}

// NormalizeQuery lowercases, trims, collapses whitespace, strips trailing
// punctuation and unifies known spelling variants.
func NormalizeQuery(query string) string {
	normalized := tokenizer.Normalize(query)
	normalized = terminalPunctuation.ReplaceAllString(normalized, "")
	return variantSpellings.Replace(normalized)
}

// Key derives the cache fingerprint for a query and its contexts.
// Context signatures are sorted so the key does not depend on retrieval order.
func Key(query string, contexts []model.ContextRecord) string {
	signatures := make([]string, 0, len(contexts))
	for _, ctx := range contexts {
		signatures = append(signatures, ctx.Name+":"+ctx.Source)
	}
	sort.Strings(signatures)

	sum := sha256.Sum256([]byte(NormalizeQuery(query) + "|" + strings.Join(signatures, ",")))
	return hex.EncodeToString(sum[:])[:keyLength]
}

// Get returns a copy of the cached response tagged with FromCache and its age.
// Expired entries are removed on read.
func (rc *ResponseCache) Get(query string, contexts []model.ContextRecord) (model.ChatResponse, bool) {
	key := Key(query, contexts)
	now := rc.clock.Now()

	rc.mu.Lock()
	defer rc.mu.Unlock()

	e, ok := rc.entries[key]
	if !ok {
		rc.misses++
		return model.ChatResponse{}, false
	}
	if now.Sub(e.createdAt) > rc.ttl {
		delete(rc.entries, key)
		rc.misses++
		return model.ChatResponse{}, false
	}

	rc.hits++
	e.lastAccessed = now
	e.accessCount++

	resp := e.response.Clone()
	age := now.Sub(e.createdAt).Milliseconds()
	resp.FromCache = true
	resp.CacheAge = &age
	return resp, true
}

// Set stores resp unless its method is not cacheable. It reports whether the entry was stored.
func (rc *ResponseCache) Set(query string, contexts []model.ContextRecord, resp model.ChatResponse) bool {
	if !resp.Method.Cacheable() {
		return false
	}

	key := Key(query, contexts)
	now := rc.clock.Now()

	stored := resp.Clone()
	stored.FromCache = false
	stored.CacheAge = nil

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, exists := rc.entries[key]; !exists && len(rc.entries) >= rc.maxSize {
		rc.evictLRU()
	}

	rc.entries[key] = &entry{
		key:          key,
		query:        NormalizeQuery(query),
		response:     stored,
		createdAt:    now,
		lastAccessed: now,
	}
	return true
}

// evictLRU removes the entry with the oldest lastAccessed. Caller must hold the lock.
func (rc *ResponseCache) evictLRU() {
	var oldestKey string
	var oldest time.Time
	for key, e := range rc.entries {
		if oldestKey == "" || e.lastAccessed.Before(oldest) {
			oldestKey = key
			oldest = e.lastAccessed
		}
	}
	if oldestKey != "" {
		delete(rc.entries, oldestKey)
		rc.logger.Debug("Evicted least recently used entry", slog.String("key", oldestKey))
	}
}

// Sweep removes every expired entry and returns how many were removed.
func (rc *ResponseCache) Sweep() int {
	now := rc.clock.Now()

	rc.mu.Lock()
	defer rc.mu.Unlock()

	removed := 0
	for key, e := range rc.entries {
		if now.Sub(e.createdAt) > rc.ttl {
			delete(rc.entries, key)
			removed++
		}
	}
	if removed > 0 {
		rc.logger.Info("Removed expired cache entries", slog.Int("removed", removed), slog.Int("remaining", len(rc.entries)))
	}
	return removed
}

// Clear drops every entry and resets the counters.
func (rc *ResponseCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.entries = make(map[string]*entry)
	rc.hits = 0
	rc.misses = 0
	rc.logger.Info("Response cache cleared")
}

// Len returns the number of stored entries, expired ones included until swept.
func (rc *ResponseCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}

// Stats returns a snapshot of counters and entry distributions.
func (rc *ResponseCache) Stats() model.CacheStats {
	now := rc.clock.Now()

	rc.mu.Lock()
	defer rc.mu.Unlock()

	stats := model.CacheStats{
		Hits:               rc.hits,
		Misses:             rc.misses,
		Size:               len(rc.entries),
		MaxSize:            rc.maxSize,
		TTLSeconds:         rc.ttl.Seconds(),
		AccessDistribution: make(map[string]int),
		MethodDistribution: make(map[string]int),
	}
	if total := rc.hits + rc.misses; total > 0 {
		stats.HitRate = float64(rc.hits) / float64(total) * 100
	}

	var totalAge time.Duration
	for _, e := range rc.entries {
		totalAge += now.Sub(e.createdAt)
		stats.AccessDistribution[accessBucket(e.accessCount)]++
		stats.MethodDistribution[string(e.response.Method)]++
	}
	if len(rc.entries) > 0 {
		stats.AverageAgeSeconds = totalAge.Seconds() / float64(len(rc.entries))
	}
	return stats
}

// Entries lists cached entries, most recently accessed first.
func (rc *ResponseCache) Entries(limit int) []model.CacheEntryInfo {
	now := rc.clock.Now()

	rc.mu.Lock()
	infos := make([]model.CacheEntryInfo, 0, len(rc.entries))
	for _, e := range rc.entries {
		infos = append(infos, model.CacheEntryInfo{
			Key:          e.key,
			Query:        e.query,
			Method:       e.response.Method,
			ContextsUsed: e.response.ContextsUsed,
			CreatedAt:    e.createdAt,
			LastAccessed: e.lastAccessed,
			AccessCount:  e.accessCount,
			AgeSeconds:   now.Sub(e.createdAt).Seconds(),
		})
	}
	rc.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].LastAccessed.Equal(infos[j].LastAccessed) {
			return infos[i].Key < infos[j].Key
		}
		return infos[i].LastAccessed.After(infos[j].LastAccessed)
	})
	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	return infos
}

func accessBucket(count int) string {
	switch {
	case count == 0:
		return "0"
	case count <= 5:
		return "1-5"
	case count <= 20:
		return "6-20"
	default:
		return "20+"
	}
}
