// Package session keeps per-conversation history used for pronoun
// resolution and prompt augmentation.
package session

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gcbaptista/space-chatbot/internal/clock"
	"github.com/gcbaptista/space-chatbot/model"
)

const (
	DefaultMaxHistory  = 10
	DefaultEntityTTL   = 10 * time.Minute
	DefaultIdleTimeout = 30 * time.Minute

	promptExchanges   = 3
	promptReplyLength = 200
)

// Config bounds session memory.
type Config struct {
	MaxHistory  int
	EntityTTL   time.Duration
	IdleTimeout time.Duration
}

// Resolution is the outcome of reference resolution.
type Resolution struct {
	ResolvedMessage  string
	ReferencedEntity string
}

type mention struct {
	at  time.Time
	seq uint64
}

type conversation struct {
	history    []model.Exchange
	entities   map[string]mention
	topics     map[string]struct{}
	lastActive time.Time
}

// Store is an in-memory session store.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*conversation
	config   Config
	seq      uint64
	clock    clock.Clock
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a session store. Zero values in cfg fall back to the defaults.
func NewStore(cfg Config, opts ...Option) *Store {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	if cfg.EntityTTL <= 0 {
		cfg.EntityTTL = DefaultEntityTTL
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	s := &Store{
		sessions: make(map[string]*conversation),
		config:   cfg,
		clock:    clock.Real{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "session_store"))
	return s
}

// ResolveReferences replaces the first back reference in text with the most
// recently mentioned entity of the session. Text is returned unchanged when
// there is no session, no live entity or no reference.
func (s *Store) ResolveReferences(sessionID, text string) Resolution {
	unchanged := Resolution{ResolvedMessage: text}
	if sessionID == "" || !HasReference(text) {
		return unchanged
	}

	now := s.clock.Now()

	s.mu.Lock()
	conv, ok := s.sessions[sessionID]
	var entity string
	if ok {
		entity = s.latestEntity(conv, now)
	}
	s.mu.Unlock()

	if entity == "" {
		return unchanged
	}

	resolved, replaced := replaceReference(text, entity)
	if !replaced {
		return unchanged
	}
	s.logger.Debug("Resolved back reference",
		slog.String("session_id", sessionID),
		slog.String("entity", entity))
	return Resolution{ResolvedMessage: resolved, ReferencedEntity: entity}
}

// latestEntity returns the most recent mention still inside the entity TTL. Caller must hold the lock.
func (s *Store) latestEntity(conv *conversation, now time.Time) string {
	var best string
	var bestMention mention
	for name, m := range conv.entities {
		if now.Sub(m.at) > s.config.EntityTTL {
			continue
		}
		if best == "" || m.seq > bestMention.seq {
			best = name
			bestMention = m
		}
	}
	return best
}

// AddToHistory appends an exchange and records the entities it mentions.
// Context names are recorded first, top context last, and entities in the
// user's own text last of all so they win later resolution.
func (s *Store) AddToHistory(sessionID, userText, botResponse string, contexts []string) {
	if sessionID == "" {
		return
	}
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.getOrCreate(sessionID, now)
	conv.history = append(conv.history, model.Exchange{
		UserText:    userText,
		BotResponse: botResponse,
		Contexts:    append([]string(nil), contexts...),
	})
	if len(conv.history) > s.config.MaxHistory {
		conv.history = conv.history[len(conv.history)-s.config.MaxHistory:]
	}

	for i := len(contexts) - 1; i >= 0; i-- {
		for _, name := range DetectEntities(contexts[i]) {
			s.recordMention(conv, name, now)
		}
	}
	for _, name := range DetectEntities(userText) {
		s.recordMention(conv, name, now)
	}
	conv.lastActive = now
}

func (s *Store) recordMention(conv *conversation, name string, now time.Time) {
	s.seq++
	conv.entities[name] = mention{at: now, seq: s.seq}
	if entity, ok := LookupEntity(name); ok {
		conv.topics[entity.Topic] = struct{}{}
	}
}

func (s *Store) getOrCreate(sessionID string, now time.Time) *conversation {
	conv, ok := s.sessions[sessionID]
	if !ok {
		conv = &conversation{
			entities:   make(map[string]mention),
			topics:     make(map[string]struct{}),
			lastActive: now,
		}
		s.sessions[sessionID] = conv
	}
	return conv
}

// BuildContextualPrompt appends recent exchanges and discussed entities to basePrompt.
func (s *Store) BuildContextualPrompt(basePrompt, sessionID, text string) string {
	if sessionID == "" {
		return basePrompt
	}
	now := s.clock.Now()

	s.mu.Lock()
	conv, ok := s.sessions[sessionID]
	if !ok || len(conv.history) == 0 {
		s.mu.Unlock()
		return basePrompt
	}
	recent := conv.history
	if len(recent) > promptExchanges {
		recent = recent[len(recent)-promptExchanges:]
	}
	recent = append([]model.Exchange(nil), recent...)
	entities := make([]string, 0, len(conv.entities))
	for name, m := range conv.entities {
		if now.Sub(m.at) <= s.config.EntityTTL {
			entities = append(entities, name)
		}
	}
	topics := make([]string, 0, len(conv.topics))
	for topic := range conv.topics {
		topics = append(topics, topic)
	}
	s.mu.Unlock()

	sort.Strings(entities)
	sort.Strings(topics)

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nNGỮ CẢNH HỘI THOẠI TRƯỚC ĐÓ:\n")
	for _, ex := range recent {
		fmt.Fprintf(&b, "Người dùng: %s\nTrợ lý: %s\n", ex.UserText, truncate(ex.BotResponse, promptReplyLength))
	}
	if len(entities) > 0 {
		fmt.Fprintf(&b, "Các đối tượng đã nhắc đến: %s\n", strings.Join(entities, ", "))
	}
	if len(topics) > 0 {
		fmt.Fprintf(&b, "Chủ đề đã thảo luận: %s\n", strings.Join(topics, ", "))
	}
	fmt.Fprintf(&b, "Câu hỏi hiện tại: %s", text)
	return b.String()
}

// History returns a copy of the session's exchanges.
func (s *Store) History(sessionID string) []model.Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	return append([]model.Exchange(nil), conv.history...)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes idle sessions and stale entity mentions. It returns the number of sessions removed.
func (s *Store) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, conv := range s.sessions {
		if now.Sub(conv.lastActive) > s.config.IdleTimeout {
			delete(s.sessions, id)
			removed++
			continue
		}
		for name, m := range conv.entities {
			if now.Sub(m.at) > s.config.EntityTTL {
				delete(conv.entities, name)
			}
		}
	}
	if removed > 0 {
		s.logger.Info("Removed idle sessions", slog.Int("removed", removed), slog.Int("remaining", len(s.sessions)))
	}
	return removed
}

func truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "..."
}
