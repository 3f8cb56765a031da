package analytics

import (
	"log/slog"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gcbaptista/space-chatbot/internal/clock"
	"github.com/gcbaptista/space-chatbot/model"
)

const (
	maxEventsToKeep = 10000 // Keep last 10k events for performance
	maxQueryLength  = 100   // Stored queries are truncated for privacy
	popularLimit    = 5
)

// Service implements analytics tracking and reporting
type Service struct {
	mutex  sync.RWMutex
	events []model.QueryEvent
	clock  clock.Clock
	logger *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces the wall clock
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new analytics service
func NewService(opts ...Option) *Service {
	service := &Service{
		events: make([]model.QueryEvent, 0),
		clock:  clock.Real{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	service.logger = service.logger.With(slog.String("component", "analytics"))
	return service
}

// TrackQuery records a new query event
func (s *Service) TrackQuery(query string, responseTime time.Duration, method model.Method, contextsUsed int, success bool) {
	event := model.QueryEvent{
		Query:        truncateQuery(query),
		Method:       method,
		ResponseTime: responseTime,
		ContextsUsed: contextsUsed,
		Success:      success,
		Timestamp:    s.clock.Now(),
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.events = append(s.events, event)

	// Keep only the latest events to prevent unbounded growth
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}

	if !success {
		s.logger.Warn("Query failed", slog.String("method", string(method)), slog.Duration("response_time", responseTime))
	}
}

// RecentQueries returns the newest events first
func (s *Service) RecentQueries(limit int) []model.QueryEvent {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}

	recent := make([]model.QueryEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, s.events[i])
	}
	return recent
}

// GetDashboardData returns complete analytics dashboard data
func (s *Service) GetDashboardData() model.AnalyticsDashboard {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := s.clock.Now()
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	last24hEvents := s.filterEventsByTime(s.events, yesterday)
	lastWeekEvents := s.filterEventsByTime(s.events, lastWeek)

	successful := 0
	contexts := 0
	for _, event := range s.events {
		if event.Success {
			successful++
		}
		contexts += event.ContextsUsed
	}

	dashboard := model.AnalyticsDashboard{
		TotalQueries:             len(s.events),
		SuccessfulQueries:        successful,
		FailedQueries:            len(s.events) - successful,
		AvgResponseTime:          s.calculateAvgResponseTime(s.events),
		MethodBreakdown:          s.getMethodBreakdown(s.events),
		QueryPerformance24h:      s.getHourlyPerformance(last24hEvents),
		PopularQueries:           s.getPopularQueries(lastWeekEvents),
		ResponseTimeDistribution: s.getResponseTimeDistribution(last24hEvents),
	}
	if len(s.events) > 0 {
		dashboard.SuccessRate = float64(successful) / float64(len(s.events)) * 100.0
		dashboard.AvgContextsUsed = float64(contexts) / float64(len(s.events))
	}

	return dashboard
}

// filterEventsByTime returns events after the given time
func (s *Service) filterEventsByTime(events []model.QueryEvent, after time.Time) []model.QueryEvent {
	var filtered []model.QueryEvent
	for _, event := range events {
		if event.Timestamp.After(after) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// calculateAvgResponseTime calculates average response time for events in milliseconds
func (s *Service) calculateAvgResponseTime(events []model.QueryEvent) int64 {
	if len(events) == 0 {
		return 0
	}

	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	avgDuration := total / time.Duration(len(events))
	return avgDuration.Milliseconds()
}

// getMethodBreakdown counts events per pipeline method
func (s *Service) getMethodBreakdown(events []model.QueryEvent) map[model.Method]int {
	breakdown := make(map[model.Method]int)
	for _, event := range events {
		breakdown[event.Method]++
	}
	return breakdown
}

// getHourlyPerformance returns hourly query performance for the last 24 hours
func (s *Service) getHourlyPerformance(events []model.QueryEvent) []model.QueryPerformanceHourly {
	hourlyData := make(map[int][]model.QueryEvent)

	for _, event := range events {
		hour := event.Timestamp.Hour()
		hourlyData[hour] = append(hourlyData[hour], event)
	}

	performance := make([]model.QueryPerformanceHourly, 0, 24)
	for hour := 0; hour < 24; hour++ {
		events := hourlyData[hour]
		performance = append(performance, model.QueryPerformanceHourly{
			Hour:            hour,
			QueryCount:      len(events),
			AvgResponseTime: s.calculateAvgResponseTime(events),
		})
	}

	return performance
}

// getPopularQueries returns the most frequent queries
func (s *Service) getPopularQueries(events []model.QueryEvent) []model.PopularQuery {
	queryCounts := make(map[string]int)

	for _, event := range events {
		if event.Query != "" {
			queryCounts[event.Query]++
		}
	}

	popular := make([]model.PopularQuery, 0, len(queryCounts))
	for query, count := range queryCounts {
		popular = append(popular, model.PopularQuery{Query: query, QueryCount: count})
	}

	// Sort by count descending, then alphabetically for stable output
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].QueryCount == popular[j].QueryCount {
			return popular[i].Query < popular[j].Query
		}
		return popular[i].QueryCount > popular[j].QueryCount
	})

	if len(popular) > popularLimit {
		popular = popular[:popularLimit]
	}
	return popular
}

// getResponseTimeDistribution returns response time distribution
func (s *Service) getResponseTimeDistribution(events []model.QueryEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	total := len(events)

	if total == 0 {
		return dist
	}

	for _, event := range events {
		ms := event.ResponseTime.Milliseconds()
		switch {
		case ms <= 100:
			dist.Bucket0To100ms++
		case ms <= 500:
			dist.Bucket100To500ms++
		case ms <= 2000:
			dist.Bucket500To2000ms++
		default:
			dist.Bucket2000msPlus++
		}
	}

	// Calculate percentages
	dist.Percentage0To100 = float64(dist.Bucket0To100ms) / float64(total) * 100
	dist.Percentage100To500 = float64(dist.Bucket100To500ms) / float64(total) * 100
	dist.Percentage500To2k = float64(dist.Bucket500To2000ms) / float64(total) * 100
	dist.Percentage2kPlus = float64(dist.Bucket2000msPlus) / float64(total) * 100

	return dist
}

func truncateQuery(query string) string {
	if utf8.RuneCountInString(query) <= maxQueryLength {
		return query
	}
	return string([]rune(query)[:maxQueryLength])
}
