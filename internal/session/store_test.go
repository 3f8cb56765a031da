package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/space-chatbot/internal/clock"
)

func newTestStore() (*Store, *clock.Fake) {
	fake := clock.NewFake(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	return NewStore(Config{MaxHistory: 3, EntityTTL: 10 * time.Minute, IdleTimeout: 30 * time.Minute}, WithClock(fake)), fake
}

func TestDetectEntities(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"diacritics", "Sao Hỏa có gì đặc biệt?", []string{"Sao Hỏa"}},
		{"no diacritics", "sao hoa va sao kim", []string{"Sao Kim", "Sao Hỏa"}},
		{"english alias", "Tell me about Jupiter", []string{"Sao Mộc"}},
		{"numbered satellites stay distinct", "VINASAT-2 phóng năm 2012", []string{"VINASAT-2"}},
		{"astronaut", "Phạm Tuân bay năm 1980", []string{"Phạm Tuân"}},
		{"nothing", "xin chào", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEntities(tt.text))
		})
	}
}

func TestHasReference(t *testing.T) {
	assert.True(t, HasReference("Nó có bao nhiêu vệ tinh?"))
	assert.True(t, HasReference("hành tinh đó lớn không"))
	assert.True(t, HasReference("Ông ấy sinh năm nào?"))
	assert.False(t, HasReference("Sao Hỏa có bao nhiêu vệ tinh?"))
	assert.False(t, HasReference("no problem"))
}

func TestResolveReferences(t *testing.T) {
	s, _ := newTestStore()
	s.AddToHistory("s1", "Sao Hỏa có gì đặc biệt?", "Sao Hỏa là hành tinh đỏ.", []string{"Sao Hỏa", "Sao Kim"})

	res := s.ResolveReferences("s1", "Nó có bao nhiêu vệ tinh?")
	assert.Equal(t, "Sao Hỏa", res.ReferencedEntity)
	assert.Equal(t, "Sao Hỏa có bao nhiêu vệ tinh?", res.ResolvedMessage)

	res = s.ResolveReferences("s1", "Kể thêm về hành tinh đó.")
	assert.Equal(t, "kể thêm về Sao Hỏa.", res.ResolvedMessage)
}

func TestResolveReferencesPrefersTopContextWithoutUserEntity(t *testing.T) {
	s, _ := newTestStore()
	s.AddToHistory("s1", "Hành tinh nào nóng nhất?", "Sao Kim nóng nhất.", []string{"Sao Kim", "Sao Thủy"})

	res := s.ResolveReferences("s1", "nó nóng bao nhiêu độ")
	assert.Equal(t, "Sao Kim", res.ReferencedEntity)
}

func TestResolveReferencesUnchanged(t *testing.T) {
	s, fake := newTestStore()

	assert.Equal(t, Resolution{ResolvedMessage: "nó là gì"}, s.ResolveReferences("", "nó là gì"))
	assert.Equal(t, Resolution{ResolvedMessage: "nó là gì"}, s.ResolveReferences("unknown", "nó là gì"))

	s.AddToHistory("s1", "Sao Mộc lớn không?", "Rất lớn.", nil)
	assert.Equal(t, Resolution{ResolvedMessage: "Sao Kim thì sao"}, s.ResolveReferences("s1", "Sao Kim thì sao"))

	fake.Advance(11 * time.Minute)
	assert.Empty(t, s.ResolveReferences("s1", "nó là gì").ReferencedEntity, "stale mentions are ignored")
}

func TestHistoryIsBounded(t *testing.T) {
	s, _ := newTestStore()
	for _, q := range []string{"một", "hai", "ba", "bốn"} {
		s.AddToHistory("s1", q, "ok", nil)
	}

	history := s.History("s1")
	require.Len(t, history, 3)
	assert.Equal(t, "hai", history[0].UserText)
	assert.Equal(t, "bốn", history[2].UserText)
}

func TestBuildContextualPrompt(t *testing.T) {
	s, _ := newTestStore()

	assert.Equal(t, "base", s.BuildContextualPrompt("base", "s1", "câu hỏi"))

	s.AddToHistory("s1", "Phạm Tuân là ai?", "Phạm Tuân là phi hành gia Việt Nam đầu tiên.", []string{"Phạm Tuân"})
	prompt := s.BuildContextualPrompt("base", "s1", "ông ấy bay năm nào")

	assert.Contains(t, prompt, "base")
	assert.Contains(t, prompt, "Người dùng: Phạm Tuân là ai?")
	assert.Contains(t, prompt, "Các đối tượng đã nhắc đến: Phạm Tuân")
	assert.Contains(t, prompt, "Chủ đề đã thảo luận: vietnam_space")
	assert.Contains(t, prompt, "Câu hỏi hiện tại: ông ấy bay năm nào")
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	s, fake := newTestStore()
	s.AddToHistory("idle", "xin chào", "chào bạn", nil)
	fake.Advance(20 * time.Minute)
	s.AddToHistory("active", "Sao Thổ", "Sao Thổ có vành đai.", nil)
	fake.Advance(15 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
	assert.Nil(t, s.History("idle"))
	assert.Len(t, s.History("active"), 1)
}
