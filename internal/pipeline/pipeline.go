// Package pipeline answers chat messages by running an ordered fallback chain:
// cache, reference resolution, small talk, retrieval, enrichment, generation,
// template reply, canned reply and a final apology. Every stage after the
// cache may fail without aborting the request.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gcbaptista/space-chatbot/internal/errors"
	"github.com/gcbaptista/space-chatbot/internal/metrics"
	"github.com/gcbaptista/space-chatbot/internal/session"
	"github.com/gcbaptista/space-chatbot/model"
	"github.com/gcbaptista/space-chatbot/services"
)

const (
	DefaultTopK              = 5
	DefaultProviderTimeout   = 8 * time.Second
	DefaultGenerationTimeout = 25 * time.Second

	// encyclopediaMaxContexts is the context count below which definitional
	// questions are sent to the encyclopedia.
	encyclopediaMaxContexts = 3

	tracerName = "github.com/gcbaptista/space-chatbot/internal/pipeline"
)

// Stage names used for spans and latency metrics.
const (
	StageCache    = "cache_lookup"
	StageResolve  = "resolve_references"
	StageCasual   = "casual"
	StageRetrieve = "retrieve"
	StageEnrich   = "enrich"
	StageGenerate = "generate"
	StageFallback = "fallback"
	StagePersist  = "post_process"
)

// RandomSource picks template variants. Implementations must be safe for concurrent use.
type RandomSource interface {
	IntN(n int) int
}

type defaultRandom struct{}

func (defaultRandom) IntN(n int) int { return rand.IntN(n) }

type disabledGenerator struct{}

func (disabledGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.ErrGeneratorUnavailable
}

// Dependencies are the collaborators of the pipeline. Retriever, Cache,
// Sessions and Analytics are required; the generator and providers are optional.
type Dependencies struct {
	Retriever    services.Retriever
	Cache        services.ResponseCache
	Generator    services.Generator
	Astronomy    services.AstronomyProvider
	Celestial    services.CelestialProvider
	Encyclopedia services.EncyclopediaProvider
	Sessions     services.SessionStore
	Analytics    services.AnalyticsSink
}

// Pipeline is the chat request orchestrator.
type Pipeline struct {
	deps              Dependencies
	topK              int
	providerTimeout   time.Duration
	generationTimeout time.Duration
	random            RandomSource
	metrics           *metrics.Metrics
	tracer            trace.Tracer
	newSessionID      func() string
	logger            *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTopK sets how many documents retrieval returns.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// WithTimeouts sets the per-call timeouts of providers and generation.
func WithTimeouts(provider, generation time.Duration) Option {
	return func(p *Pipeline) {
		if provider > 0 {
			p.providerTimeout = provider
		}
		if generation > 0 {
			p.generationTimeout = generation
		}
	}
}

// WithRandom replaces the template variant picker.
func WithRandom(r RandomSource) Option {
	return func(p *Pipeline) {
		p.random = r
	}
}

// WithMetrics records stage latencies and outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithTracerProvider sets the provider for stage spans. The global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) {
		p.tracer = tp.Tracer(tracerName)
	}
}

// WithSessionIDGenerator replaces the generator for new session ids.
func WithSessionIDGenerator(fn func() string) Option {
	return func(p *Pipeline) {
		p.newSessionID = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New validates the dependencies and builds a Pipeline.
func New(deps Dependencies, opts ...Option) (*Pipeline, error) {
	switch {
	case deps.Retriever == nil:
		return nil, errors.NewValidationError("retriever", "is required")
	case deps.Cache == nil:
		return nil, errors.NewValidationError("cache", "is required")
	case deps.Sessions == nil:
		return nil, errors.NewValidationError("sessions", "is required")
	case deps.Analytics == nil:
		return nil, errors.NewValidationError("analytics", "is required")
	}
	if deps.Generator == nil {
		deps.Generator = disabledGenerator{}
	}

	p := &Pipeline{
		deps:              deps,
		topK:              DefaultTopK,
		providerTimeout:   DefaultProviderTimeout,
		generationTimeout: DefaultGenerationTimeout,
		random:            defaultRandom{},
		tracer:            otel.Tracer(tracerName),
		newSessionID:      func() string { return uuid.New().String() },
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "pipeline"))
	return p, nil
}

// request carries the state of one Process call between stages.
type request struct {
	message   string
	query     string
	sessionID string
	referent  string
	casual    CasualIntent
	contexts  []model.ContextRecord
	reply     string
	method    model.Method
}

// Process answers one chat message. The work is detached from ctx cancellation
// so that a client disconnect does not abort in-flight provider calls.
// Errors are returned only for invalid input or an internal failure; the
// latter is recorded in analytics as a failed server_error.
func (p *Pipeline) Process(ctx context.Context, req model.ChatRequest) (resp model.ChatResponse, err error) {
	start := time.Now()
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return model.ChatResponse{}, errors.NewValidationError("message", "is required")
	}

	ctx, span := p.tracer.Start(context.WithoutCancel(ctx), "pipeline.process")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
		if err != nil {
			elapsed := time.Since(start)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			p.logger.Error("Chat request failed", slog.String("error", err.Error()))
			p.deps.Analytics.TrackQuery(message, elapsed, model.MethodServerError, 0, false)
			p.metrics.ObserveChat(model.MethodServerError, false, false, elapsed)
			resp = model.ChatResponse{}
		}
	}()

	r := &request{message: message, query: message, sessionID: req.SessionID}
	if r.sessionID == "" {
		r.sessionID = p.newSessionID()
	}
	span.SetAttributes(attribute.String("chat.session_id", r.sessionID))

	if cached, ok := p.lookupCache(ctx, r); ok {
		return p.finishCached(ctx, r, cached, start), nil
	}

	p.stage(ctx, StageResolve, func(context.Context) {
		res := p.deps.Sessions.ResolveReferences(r.sessionID, r.message)
		if res.ResolvedMessage != "" {
			r.query = res.ResolvedMessage
		}
		r.referent = res.ReferencedEntity
	})

	var isCasual bool
	p.stage(ctx, StageCasual, func(context.Context) {
		r.casual, isCasual = DetectCasualIntent(r.query)
		if isCasual {
			r.reply = p.pick(CasualReplies(r.casual))
			r.method = model.MethodCasualConversation
		}
	})

	if !isCasual {
		p.stage(ctx, StageRetrieve, func(context.Context) { p.retrieve(r) })
		p.stage(ctx, StageEnrich, func(ctx context.Context) { p.enrich(ctx, r) })
		p.stage(ctx, StageGenerate, func(ctx context.Context) { p.generate(ctx, r) })
		p.stage(ctx, StageFallback, func(context.Context) { p.fallback(r) })
	}

	if r.reply == "" {
		r.reply = FinalApology
		r.method = model.MethodFinalFallback
	}

	resp = p.assemble(r, start)
	p.stage(ctx, StagePersist, func(context.Context) { p.persist(r, resp) })

	span.SetAttributes(
		attribute.String("chat.method", string(resp.Method)),
		attribute.Int("chat.contexts", resp.ContextsUsed),
	)
	p.metrics.ObserveChat(resp.Method, false, resp.Success, time.Since(start))
	return resp, nil
}

// stage runs fn inside a span and records its latency.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context)) {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()
	began := time.Now()
	fn(ctx)
	p.metrics.ObserveStage(name, time.Since(began))
}

// lookupCache keys on the query alone. Messages with a back reference depend
// on the session and are never served from or written to the cache.
func (p *Pipeline) lookupCache(ctx context.Context, r *request) (model.ChatResponse, bool) {
	if session.HasReference(r.message) {
		return model.ChatResponse{}, false
	}
	var cached model.ChatResponse
	var hit bool
	p.stage(ctx, StageCache, func(context.Context) {
		cached, hit = p.deps.Cache.Get(r.message, nil)
	})
	p.metrics.ObserveCacheLookup(hit)
	return cached, hit
}

func (p *Pipeline) finishCached(ctx context.Context, r *request, cached model.ChatResponse, start time.Time) model.ChatResponse {
	elapsed := time.Since(start)
	cached.SessionID = r.sessionID
	cached.ResponseTime = elapsed.Milliseconds()

	names := make([]string, 0, len(cached.Sources))
	for _, src := range cached.Sources {
		names = append(names, src.Name)
	}
	p.deps.Sessions.AddToHistory(r.sessionID, r.message, cached.Reply, names)
	p.deps.Analytics.TrackQuery(r.message, elapsed, cached.Method, cached.ContextsUsed, cached.Success)

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Bool("chat.from_cache", true),
		attribute.String("chat.method", string(cached.Method)),
	)
	p.metrics.ObserveChat(cached.Method, true, cached.Success, elapsed)
	return cached
}

func (p *Pipeline) retrieve(r *request) {
	docs := p.deps.Retriever.Retrieve(r.query, p.topK)
	r.contexts = make([]model.ContextRecord, 0, len(docs)+2)
	for _, doc := range docs {
		r.contexts = append(r.contexts, model.ContextFromDocument(doc))
	}
}

// enrich queries the external providers. Each failure is logged and skipped.
func (p *Pipeline) enrich(ctx context.Context, r *request) {
	if p.deps.Astronomy != nil {
		callCtx, cancel := context.WithTimeout(ctx, p.providerTimeout)
		records, err := p.deps.Astronomy.Enrich(callCtx, r.query)
		cancel()
		if err != nil {
			p.providerFailed(ctx, "astronomy", err)
		} else {
			r.contexts = append(r.contexts, records...)
		}
	}

	if p.deps.Celestial != nil {
		if id, displayName, ok := p.deps.Celestial.Recognize(r.query); ok {
			callCtx, cancel := context.WithTimeout(ctx, p.providerTimeout)
			body, err := p.deps.Celestial.Lookup(callCtx, id)
			cancel()
			switch {
			case err != nil:
				p.providerFailed(ctx, "celestial", err)
			case body != nil:
				r.contexts = append([]model.ContextRecord{body.Context(displayName)}, r.contexts...)
			}
		}
	}

	if p.deps.Encyclopedia != nil && len(r.contexts) < encyclopediaMaxContexts && IsDefinitional(r.query) {
		if topic := ExtractTopic(r.query); topic != "" {
			callCtx, cancel := context.WithTimeout(ctx, p.providerTimeout)
			summary, err := p.deps.Encyclopedia.Summarize(callCtx, topic)
			cancel()
			switch {
			case err != nil:
				p.providerFailed(ctx, "encyclopedia", err)
			case summary != nil:
				r.contexts = append(r.contexts, summary.Context())
			}
		}
	}
}

func (p *Pipeline) providerFailed(ctx context.Context, provider string, err error) {
	trace.SpanFromContext(ctx).AddEvent("provider_failed", trace.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("error", err.Error()),
	))
	p.logger.Warn("Enrichment provider failed",
		slog.String("provider", provider),
		slog.String("error", err.Error()))
}

func (p *Pipeline) generate(ctx context.Context, r *request) {
	prompt := p.deps.Sessions.BuildContextualPrompt(BuildPrompt(r.query, r.contexts), r.sessionID, r.query)

	callCtx, cancel := context.WithTimeout(ctx, p.generationTimeout)
	defer cancel()
	reply, err := p.deps.Generator.Generate(callCtx, prompt)
	if err != nil {
		p.logger.Info("Generation unavailable, using fallback", slog.String("error", err.Error()))
		return
	}
	if reply = strings.TrimSpace(reply); reply != "" {
		r.reply = reply
		r.method = model.MethodContextualGeneration
	}
}

// fallback fills the reply when generation produced nothing.
func (p *Pipeline) fallback(r *request) {
	if r.reply != "" {
		return
	}
	if len(r.contexts) > 0 {
		if reply, ok := TemplateReply(r.query, r.contexts); ok {
			r.reply = reply
			r.method = model.MethodTemplateGeneration
			return
		}
		r.reply = ErrorFallbackReply(r.contexts)
		r.method = model.MethodErrorFallback
		return
	}
	r.reply = p.pick(CannedReplies(DetectQuestionType(r.query)))
	r.method = model.MethodNoContextFallback
}

func (p *Pipeline) assemble(r *request, start time.Time) model.ChatResponse {
	return model.ChatResponse{
		Reply:            r.reply,
		Sources:          model.SourcesFromContexts(r.contexts),
		Method:           r.method,
		ContextsUsed:     len(r.contexts),
		SessionID:        r.sessionID,
		ResponseTime:     time.Since(start).Milliseconds(),
		ReferencedEntity: r.referent,
		NLPInsights:      Insights(r.query, r.casual),
		Success:          succeeded(r.method),
	}
}

// succeeded is false for replies that carry no answer.
func succeeded(method model.Method) bool {
	switch method {
	case model.MethodNoContextFallback, model.MethodFinalFallback, model.MethodServerError:
		return false
	}
	return true
}

func (p *Pipeline) persist(r *request, resp model.ChatResponse) {
	if resp.Method.Cacheable() && r.referent == "" && !session.HasReference(r.message) {
		p.deps.Cache.Set(r.message, nil, resp)
	}

	names := make([]string, 0, len(r.contexts))
	for _, ctx := range r.contexts {
		names = append(names, ctx.Name)
	}
	p.deps.Sessions.AddToHistory(r.sessionID, r.query, resp.Reply, names)
	p.deps.Analytics.TrackQuery(r.message, time.Duration(resp.ResponseTime)*time.Millisecond, resp.Method, resp.ContextsUsed, resp.Success)
}

func (p *Pipeline) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[p.random.IntN(len(options))]
}

// BuildPrompt serializes the contexts verbatim as JSON ahead of the question.
func BuildPrompt(query string, contexts []model.ContextRecord) string {
	var b strings.Builder
	if len(contexts) > 0 {
		b.WriteString("THÔNG TIN THAM KHẢO (JSON):\n")
		encoded, err := json.MarshalIndent(contexts, "", "  ")
		if err != nil {
			for _, ctx := range contexts {
				fmt.Fprintf(&b, "- %s (%s): %s\n", ctx.Name, ctx.Source, ctx.Description)
			}
		} else {
			b.Write(encoded)
			b.WriteString("\n")
		}
		b.WriteString("\nChỉ sử dụng thông tin tham khảo ở trên khi phù hợp. ")
	} else {
		b.WriteString("Không có thông tin tham khảo cho câu hỏi này. ")
	}
	b.WriteString("Trả lời bằng tiếng Việt, ngắn gọn và chính xác.\n\n")
	fmt.Fprintf(&b, "CÂU HỎI: %s", query)
	return b.String()
}
