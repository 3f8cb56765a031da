package model

import "time"

// CacheStats is a read-only snapshot of the response cache.
type CacheStats struct {
	Hits               int64          `json:"hits"`
	Misses             int64          `json:"misses"`
	HitRate            float64        `json:"hit_rate"` // percent
	Size               int            `json:"size"`
	MaxSize            int            `json:"max_size"`
	TTLSeconds         float64        `json:"ttl_seconds"`
	AverageAgeSeconds  float64        `json:"average_age_seconds"`
	AccessDistribution map[string]int `json:"access_distribution"`
	MethodDistribution map[string]int `json:"method_distribution"`
}

// CacheEntryInfo describes one cached entry for introspection.
type CacheEntryInfo struct {
	Key          string    `json:"key"`
	Query        string    `json:"query"`
	Method       Method    `json:"method"`
	ContextsUsed int       `json:"contexts_used"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
	AccessCount  int       `json:"access_count"`
	AgeSeconds   float64   `json:"age_seconds"`
}
