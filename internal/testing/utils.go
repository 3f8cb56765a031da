// Package testing provides fakes and helpers shared by the chatbot's tests.
package testing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/gcbaptista/space-chatbot/internal/errors"
	"github.com/gcbaptista/space-chatbot/internal/knowledge"
	"github.com/gcbaptista/space-chatbot/internal/search"
	"github.com/gcbaptista/space-chatbot/model"
)

// ErrUpstream is the failure returned by the failing fakes.
var ErrUpstream = errors.New("upstream failure")

// NewKnowledgeIndex builds an initialized index over the bundled knowledge base.
func NewKnowledgeIndex(t *testing.T) *search.Index {
	t.Helper()
	ix := search.NewIndex(knowledge.Documents())
	require.NoError(t, ix.Initialize(), "Failed to initialize knowledge index")
	return ix
}

// FakeGenerator returns a fixed reply or error and records prompts.
type FakeGenerator struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	prompts []string
}

// Generate implements services.Generator.
func (g *FakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	return g.Reply, nil
}

// Prompts returns the prompts received so far.
func (g *FakeGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

// Calls returns how many times Generate was invoked.
func (g *FakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// FakeAstronomy returns fixed records or an error.
type FakeAstronomy struct {
	mu      sync.Mutex
	Records []model.ContextRecord
	Err     error
	calls   int
}

// Enrich implements services.AstronomyProvider.
func (a *FakeAstronomy) Enrich(_ context.Context, _ string) ([]model.ContextRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.Err != nil {
		return nil, a.Err
	}
	return append([]model.ContextRecord(nil), a.Records...), nil
}

// Calls returns how many times Enrich was invoked.
func (a *FakeAstronomy) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// FakeCelestial recognizes a single catalog id.
type FakeCelestial struct {
	mu          sync.Mutex
	ID          string
	DisplayName string
	Body        *model.CelestialBody
	Err         error
	lookups     int
}

// Recognize implements services.CelestialProvider. It matches any query when ID is set.
func (c *FakeCelestial) Recognize(string) (string, string, bool) {
	return c.ID, c.DisplayName, c.ID != ""
}

// Lookup implements services.CelestialProvider.
func (c *FakeCelestial) Lookup(_ context.Context, id string) (*model.CelestialBody, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	if c.Err != nil {
		return nil, c.Err
	}
	if c.Body == nil || id != c.ID {
		return nil, apperrors.ErrNotFound
	}
	body := *c.Body
	return &body, nil
}

// Lookups returns how many times Lookup was invoked.
func (c *FakeCelestial) Lookups() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookups
}

// FakeEncyclopedia returns a fixed summary or error and records topics.
type FakeEncyclopedia struct {
	mu      sync.Mutex
	Summary *model.EncyclopediaSummary
	Err     error
	topics  []string
}

// Summarize implements services.EncyclopediaProvider.
func (e *FakeEncyclopedia) Summarize(_ context.Context, topic string) (*model.EncyclopediaSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.topics = append(e.topics, topic)
	if e.Err != nil {
		return nil, e.Err
	}
	if e.Summary == nil {
		return nil, apperrors.ErrNotFound
	}
	summary := *e.Summary
	return &summary, nil
}

// Topics returns the topics requested so far.
func (e *FakeEncyclopedia) Topics() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.topics...)
}

// FixedRandom always picks the same variant index, modulo n.
type FixedRandom struct {
	Value int
}

// IntN implements pipeline.RandomSource.
func (r FixedRandom) IntN(n int) int {
	return r.Value % n
}

// Collaborators groups the external fakes.
type Collaborators struct {
	Generator    *FakeGenerator
	Astronomy    *FakeAstronomy
	Celestial    *FakeCelestial
	Encyclopedia *FakeEncyclopedia
}

// FailingCollaborators returns fakes that fail on every call. The celestial
// fake recognizes "mars" so that its lookup is attempted.
func FailingCollaborators() Collaborators {
	return Collaborators{
		Generator:    &FakeGenerator{Err: apperrors.ErrGeneratorUnavailable},
		Astronomy:    &FakeAstronomy{Err: apperrors.NewProviderError("nasa", 503, ErrUpstream)},
		Celestial:    &FakeCelestial{ID: "mars", DisplayName: "Sao Hỏa", Err: apperrors.NewProviderError("solarsystem", 504, ErrUpstream)},
		Encyclopedia: &FakeEncyclopedia{Err: apperrors.NewProviderError("wikipedia", 502, ErrUpstream)},
	}
}
