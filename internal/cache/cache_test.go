package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/space-chatbot/internal/clock"
	"github.com/gcbaptista/space-chatbot/model"
)

var testStart = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestCache(maxSize int, ttl time.Duration) (*ResponseCache, *clock.Fake) {
	fake := clock.NewFake(testStart)
	return New(Config{MaxSize: maxSize, TTL: ttl}, WithClock(fake)), fake
}

func marsResponse() model.ChatResponse {
	return model.ChatResponse{
		Reply:        "Sao Hỏa là hành tinh đỏ.",
		Sources:      []model.Source{{Name: "Sao Hỏa", Source: model.SourceKnowledgeBase}},
		Method:       model.MethodContextualGeneration,
		ContextsUsed: 1,
		SessionID:    "s1",
		Success:      true,
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims and lowercases", "  Sao Hỏa  ", "sao hỏa"},
		{"strips terminal punctuation", "Sao Hỏa có gì đặc biệt???", "sao hỏa có gì đặc biệt"},
		{"collapses whitespace", "sao   hỏa\tcó gì", "sao hỏa có gì"},
		{"old-style tone placement", "Sao Hoả", "sao hỏa"},
		{"sino-vietnamese planet name", "Mộc tinh lớn cỡ nào?", "sao mộc lớn cỡ nào"},
		{"keeps inner punctuation", "VINASAT-1 là gì?", "vinasat-1 là gì"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQuery(tt.input))
		})
	}
}

func TestKeyIsOrderIndependent(t *testing.T) {
	a := model.ContextRecord{Name: "Sao Hỏa", Source: model.SourceKnowledgeBase}
	b := model.ContextRecord{Name: "Mars", Source: model.SourceSolarSystem}

	k1 := Key("Sao Hỏa?", []model.ContextRecord{a, b})
	k2 := Key("sao hỏa", []model.ContextRecord{b, a})

	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 16)
	assert.NotEqual(t, k1, Key("sao hỏa", nil))
	assert.NotEqual(t, Key("sao kim", nil), Key("sao hỏa", nil))
}

func TestRoundTripPreservesPayload(t *testing.T) {
	rc, fake := newTestCache(10, time.Hour)
	contexts := []model.ContextRecord{{Name: "Sao Hỏa", Source: model.SourceKnowledgeBase}}
	resp := marsResponse()

	require.True(t, rc.Set("Sao Hỏa có gì?", contexts, resp))
	fake.Advance(3 * time.Second)

	got, ok := rc.Get("sao hỏa có gì", contexts)
	require.True(t, ok)
	assert.Equal(t, resp.Reply, got.Reply)
	assert.Equal(t, resp.Sources, got.Sources)
	assert.Equal(t, resp.ContextsUsed, got.ContextsUsed)
	assert.True(t, got.FromCache)
	require.NotNil(t, got.CacheAge)
	assert.Equal(t, int64(3000), *got.CacheAge)
}

func TestReturnedCopiesAreIsolated(t *testing.T) {
	rc, _ := newTestCache(10, time.Hour)
	resp := marsResponse()
	rc.Set("q", nil, resp)

	resp.Sources[0].Name = "mutated by caller"
	got, ok := rc.Get("q", nil)
	require.True(t, ok)
	assert.Equal(t, "Sao Hỏa", got.Sources[0].Name)

	got.Sources[0].Name = "mutated after read"
	again, _ := rc.Get("q", nil)
	assert.Equal(t, "Sao Hỏa", again.Sources[0].Name)
}

func TestNonCacheableMethods(t *testing.T) {
	rc, _ := newTestCache(10, time.Hour)

	for _, method := range []model.Method{model.MethodServerError, model.MethodCasualConversation, model.MethodErrorFallback} {
		t.Run(string(method), func(t *testing.T) {
			resp := marsResponse()
			resp.Method = method

			assert.False(t, rc.Set("chào bạn", nil, resp))
			_, ok := rc.Get("chào bạn", nil)
			assert.False(t, ok)
		})
	}
	assert.Equal(t, 0, rc.Len())
}

func TestTTLExpiry(t *testing.T) {
	rc, fake := newTestCache(10, time.Minute)
	rc.Set("q", nil, marsResponse())

	fake.Advance(time.Minute - time.Millisecond)
	_, ok := rc.Get("q", nil)
	assert.True(t, ok, "entry should still be live just before TTL")

	fake.Advance(2 * time.Millisecond)
	_, ok = rc.Get("q", nil)
	assert.False(t, ok, "entry should expire just after TTL")
	assert.Equal(t, 0, rc.Len(), "expired entry is removed on read")
}

func TestLRUEvictsLeastRecentlyAccessed(t *testing.T) {
	rc, fake := newTestCache(2, time.Hour)

	rc.Set("first", nil, marsResponse())
	fake.Advance(time.Second)
	rc.Set("second", nil, marsResponse())
	fake.Advance(time.Second)

	// Touch the oldest entry so the second one becomes least recently used.
	_, ok := rc.Get("first", nil)
	require.True(t, ok)
	fake.Advance(time.Second)

	rc.Set("third", nil, marsResponse())

	assert.Equal(t, 2, rc.Len())
	_, ok = rc.Get("first", nil)
	assert.True(t, ok)
	_, ok = rc.Get("second", nil)
	assert.False(t, ok)
	_, ok = rc.Get("third", nil)
	assert.True(t, ok)
}

func TestOverwriteDoesNotEvict(t *testing.T) {
	rc, _ := newTestCache(2, time.Hour)
	rc.Set("a", nil, marsResponse())
	rc.Set("b", nil, marsResponse())
	rc.Set("a", nil, marsResponse())

	assert.Equal(t, 2, rc.Len())
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	rc, fake := newTestCache(10, time.Minute)
	rc.Set("old", nil, marsResponse())
	fake.Advance(45 * time.Second)
	rc.Set("new", nil, marsResponse())
	fake.Advance(30 * time.Second)

	assert.Equal(t, 1, rc.Sweep())
	assert.Equal(t, 1, rc.Len())
	assert.Equal(t, 0, rc.Sweep())
}

func TestStatsAndEntries(t *testing.T) {
	rc, fake := newTestCache(10, time.Hour)

	rc.Set("sao hỏa", nil, marsResponse())
	template := marsResponse()
	template.Method = model.MethodTemplateGeneration
	fake.Advance(10 * time.Second)
	rc.Set("sao kim", nil, template)
	fake.Advance(time.Second)

	rc.Get("sao hỏa", nil)
	rc.Get("sao hỏa", nil)
	rc.Get("missing", nil)

	stats := rc.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 66.67, stats.HitRate, 0.01)
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 10, stats.MaxSize)
	assert.Equal(t, 3600.0, stats.TTLSeconds)
	assert.InDelta(t, 6.0, stats.AverageAgeSeconds, 0.001)
	assert.Equal(t, map[string]int{"0": 1, "1-5": 1}, stats.AccessDistribution)
	assert.Equal(t, map[string]int{"contextual_generation": 1, "template_generation": 1}, stats.MethodDistribution)

	entries := rc.Entries(1)
	require.Len(t, entries, 1)
	assert.Equal(t, "sao hỏa", entries[0].Query)
	assert.Equal(t, 2, entries[0].AccessCount)

	rc.Clear()
	cleared := rc.Stats()
	assert.Equal(t, 0, cleared.Size)
	assert.Equal(t, int64(0), cleared.Hits)
}
