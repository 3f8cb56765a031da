package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/space-chatbot/model"
)

func newTestDocs() []model.Document {
	return []model.Document{
		{ID: "mars", Name: "Sao Hỏa", Text: "Sao Hỏa là hành tinh đỏ, có hai vệ tinh Phobos và Deimos"},
		{ID: "venus", Name: "Sao Kim", Text: "Sao Kim là hành tinh nóng nhất hệ mặt trời"},
		{ID: "pham_tuan", Name: "Phạm Tuân", Text: "Phạm Tuân là phi hành gia Việt Nam đầu tiên bay vào vũ trụ"},
		{ID: "black_hole_a", Name: "Lỗ đen", Text: "lỗ đen"},
		{ID: "black_hole_b", Name: "Hố đen", Text: "lỗ đen"},
	}
}

func newReadyIndex(t *testing.T, docs []model.Document) *Index {
	t.Helper()
	ix := NewIndex(docs)
	require.NoError(t, ix.Initialize())
	return ix
}

func TestRetrieveBeforeInitialize(t *testing.T) {
	ix := NewIndex(newTestDocs())

	assert.False(t, ix.Ready())
	assert.Empty(t, ix.Retrieve("Sao Hỏa", 5))

	_, ok := ix.Similarity("Sao Hỏa", "mars")
	assert.False(t, ok)
}

func TestInitializeIsIdempotent(t *testing.T) {
	ix := newReadyIndex(t, newTestDocs())
	first := ix.Stats()
	firstHits := ix.Search("hành tinh đỏ", 5)

	require.NoError(t, ix.Initialize())
	second := ix.Stats()

	assert.Equal(t, first, second)
	assert.Equal(t, 5, second.DocumentCount)
	assert.True(t, second.VocabularySize > 0)
	assert.Equal(t, firstHits, ix.Search("hành tinh đỏ", 5))
}

func TestRetrieveRanksMatchingDocumentFirst(t *testing.T) {
	ix := newReadyIndex(t, newTestDocs())

	tests := []struct {
		name    string
		query   string
		firstID string
	}{
		{"diacritic planet name", "Sao Hỏa có gì đặc biệt?", "mars"},
		{"folded planet name", "sao hoa", "mars"},
		{"astronaut", "Phạm Tuân là ai", "pham_tuan"},
		{"hottest planet", "hành tinh nóng nhất", "venus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := ix.Retrieve(tt.query, 5)
			require.NotEmpty(t, docs)
			assert.Equal(t, tt.firstID, docs[0].ID)
		})
	}
}

func TestRetrieveUnknownTermsReturnsEmpty(t *testing.T) {
	ix := newReadyIndex(t, newTestDocs())

	assert.Empty(t, ix.Retrieve("quasar pulsar", 5))
	assert.Empty(t, ix.Retrieve("", 5))
	assert.Empty(t, ix.Retrieve("?!...", 5))
}

func TestRetrieveRespectsTopK(t *testing.T) {
	ix := newReadyIndex(t, newTestDocs())

	assert.Len(t, ix.Retrieve("hành tinh", 1), 1)
	assert.Len(t, ix.Retrieve("hành tinh", 0), 2, "non-positive topK falls back to the default")
}

func TestEqualScoresKeepCorpusOrder(t *testing.T) {
	ix := newReadyIndex(t, newTestDocs())

	hits := ix.Search("lỗ đen", 5)
	require.Len(t, hits, 2)
	assert.Equal(t, "black_hole_a", hits[0].Document.ID)
	assert.Equal(t, "black_hole_b", hits[1].Document.ID)
	assert.InDelta(t, hits[0].Score, hits[1].Score, 1e-12)
}

func TestTermInEveryDocumentHasZeroWeight(t *testing.T) {
	docs := []model.Document{
		{ID: "a", Text: "mặt trời"},
		{ID: "b", Text: "mặt trời mọc"},
	}
	ix := newReadyIndex(t, docs)

	assert.Equal(t, 0.0, ix.IDF("mặt_trời"))
	assert.Empty(t, ix.Retrieve("mặt trời", 5))
	assert.InDelta(t, math.Log(2), ix.IDF("mọc"), 1e-12)
}

func TestSimilarityBounds(t *testing.T) {
	ix := newReadyIndex(t, newTestDocs())

	for _, doc := range newTestDocs() {
		sim, ok := ix.Similarity(doc.Text, doc.ID)
		require.True(t, ok)
		assert.GreaterOrEqual(t, sim, 0.0)
		assert.LessOrEqual(t, sim, 1.0)
	}

	sim, ok := ix.Similarity("Sao Hỏa là hành tinh đỏ, có hai vệ tinh Phobos và Deimos", "mars")
	require.True(t, ok)
	assert.InDelta(t, 1.0, sim, 1e-9)

	_, ok = ix.Similarity("anything", "missing")
	assert.False(t, ok)
}

func TestRetrieveIsDeterministic(t *testing.T) {
	ix := newReadyIndex(t, newTestDocs())

	first := ix.Search("hành tinh vệ tinh Việt Nam", 5)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ix.Search("hành tinh vệ tinh Việt Nam", 5))
	}
}

func TestCosineSimilarityZeroNorm(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity(TermVector{}, TermVector{"a": 1}))
	assert.Equal(t, 0.0, CosineSimilarity(TermVector{"a": 1}, TermVector{}))
	assert.InDelta(t, 1.0, CosineSimilarity(TermVector{"a": 2, "b": 1}, TermVector{"a": 4, "b": 2}), 1e-12)
}
