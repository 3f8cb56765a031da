package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/space-chatbot/internal/search"
	"github.com/gcbaptista/space-chatbot/model"
)

func TestDocumentsAreWellFormed(t *testing.T) {
	docs := Documents()
	require.NotEmpty(t, docs)

	seen := make(map[string]bool)
	for _, doc := range docs {
		assert.NotEmpty(t, doc.ID)
		assert.False(t, seen[doc.ID], "duplicate id %s", doc.ID)
		seen[doc.ID] = true
		assert.NotEmpty(t, doc.Name)
		assert.NotEmpty(t, doc.Text)
		assert.NotEmpty(t, doc.Description())
		assert.Contains(t, []model.DocumentType{model.DocumentTypePlanet, model.DocumentTypeConcept}, doc.Type)
	}
}

func TestDocumentsReturnsFreshCopies(t *testing.T) {
	first := Documents()
	first[0].Payload.(*model.PlanetFacts).Description = "mutated"

	assert.NotEqual(t, "mutated", Documents()[0].Description())
}

func TestRetrievalOverKnowledgeBase(t *testing.T) {
	ix := search.NewIndex(Documents())
	require.NoError(t, ix.Initialize())

	tests := []struct {
		query string
		want  string
	}{
		{"Sao Hỏa có gì đặc biệt?", "mars"},
		{"sao hoa co gi dac biet", "mars"},
		{"Phạm Tuân là ai?", "pham_tuan"},
		{"VINASAT-1 phóng năm nào", "vinasat_1"},
		{"lỗ đen là gì", "black_hole"},
		{"Sao Mộc", "jupiter"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			docs := ix.Retrieve(tt.query, 5)
			require.NotEmpty(t, docs)
			ids := make([]string, len(docs))
			for i, d := range docs {
				ids[i] = d.ID
			}
			assert.Contains(t, ids, tt.want)
		})
	}
}
