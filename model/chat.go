package model

// Method tags the strategy that produced a chat reply.
type Method string

const (
	MethodContextualGeneration Method = "contextual_generation"
	MethodTemplateGeneration   Method = "template_generation"
	MethodNoContextFallback    Method = "no_context_fallback"
	MethodCasualConversation   Method = "casual_conversation"
	MethodErrorFallback        Method = "error_fallback"
	MethodFinalFallback        Method = "final_fallback"
	MethodServerError          Method = "server_error"
)

// Cacheable reports whether responses produced by this method may be stored
// in the response cache. Error replies and casual replies are never reused.
func (m Method) Cacheable() bool {
	switch m {
	case MethodServerError, MethodCasualConversation, MethodErrorFallback:
		return false
	}
	return true
}

// ChatRequest is the input to the request pipeline.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// Source names one context used to build a reply.
type Source struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// NLPInsights carries the intent metadata detected for a query.
type NLPInsights struct {
	QuestionType string   `json:"questionType"`
	Intent       string   `json:"intent,omitempty"`
	Entities     []string `json:"entities,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// ChatResponse is the output of the request pipeline.
type ChatResponse struct {
	Reply            string       `json:"reply"`
	Sources          []Source     `json:"sources"`
	Method           Method       `json:"method"`
	ContextsUsed     int          `json:"contextsUsed"`
	SessionID        string       `json:"sessionId"`
	ResponseTime     int64        `json:"responseTime"` // milliseconds
	ReferencedEntity string       `json:"referencedEntity,omitempty"`
	NLPInsights      *NLPInsights `json:"nlpInsights,omitempty"`
	Success          bool         `json:"success"`
	FromCache        bool         `json:"fromCache,omitempty"`
	CacheAge         *int64       `json:"cacheAge,omitempty"` // milliseconds, set only on cache hits
}

// SourcesFromContexts derives the response source list from gathered contexts.
func SourcesFromContexts(contexts []ContextRecord) []Source {
	sources := make([]Source, 0, len(contexts))
	for _, ctx := range contexts {
		sources = append(sources, Source{Name: ctx.Name, Source: ctx.Source})
	}
	return sources
}

// Clone returns a deep copy of the response so cached values cannot be mutated by callers.
func (r ChatResponse) Clone() ChatResponse {
	out := r
	if r.Sources != nil {
		out.Sources = append([]Source(nil), r.Sources...)
	}
	if r.NLPInsights != nil {
		insights := *r.NLPInsights
		insights.Entities = append([]string(nil), r.NLPInsights.Entities...)
		insights.Keywords = append([]string(nil), r.NLPInsights.Keywords...)
		out.NLPInsights = &insights
	}
	if r.CacheAge != nil {
		age := *r.CacheAge
		out.CacheAge = &age
	}
	return out
}

// Exchange is one user/bot turn stored in a conversation session.
type Exchange struct {
	UserText    string   `json:"userText"`
	BotResponse string   `json:"botResponse"`
	Contexts    []string `json:"contexts,omitempty"`
}
