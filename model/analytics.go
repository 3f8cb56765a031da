package model

import "time"

// QueryEvent represents a single chat query for analytics tracking.
// Query is truncated before it is stored.
type QueryEvent struct {
	Query        string        `json:"query"`
	Method       Method        `json:"method"`
	ResponseTime time.Duration `json:"response_time"`
	ContextsUsed int           `json:"contexts_used"`
	Success      bool          `json:"success"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PopularQuery represents aggregated data for frequent queries
type PopularQuery struct {
	Query      string `json:"query"`
	QueryCount int    `json:"query_count"`
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	Bucket0To100ms     int     `json:"bucket_0_100ms"`
	Bucket100To500ms   int     `json:"bucket_100_500ms"`
	Bucket500To2000ms  int     `json:"bucket_500_2000ms"`
	Bucket2000msPlus   int     `json:"bucket_2000ms_plus"`
	Percentage0To100   float64 `json:"percentage_0_100"`
	Percentage100To500 float64 `json:"percentage_100_500"`
	Percentage500To2k  float64 `json:"percentage_500_2000"`
	Percentage2kPlus   float64 `json:"percentage_2000_plus"`
}

// QueryPerformanceHourly represents hourly query performance data
type QueryPerformanceHourly struct {
	Hour            int   `json:"hour"`
	QueryCount      int   `json:"query_count"`
	AvgResponseTime int64 `json:"avg_response_time"` // in milliseconds
}

// AnalyticsDashboard represents the aggregate analytics counters
type AnalyticsDashboard struct {
	// Summary metrics
	TotalQueries      int     `json:"total_queries"`
	SuccessfulQueries int     `json:"successful_queries"`
	FailedQueries     int     `json:"failed_queries"`
	SuccessRate       float64 `json:"success_rate"`      // percent
	AvgResponseTime   int64   `json:"avg_response_time"` // in milliseconds
	AvgContextsUsed   float64 `json:"avg_contexts_used"`

	// Detailed analytics
	MethodBreakdown          map[Method]int           `json:"method_breakdown"`
	QueryPerformance24h      []QueryPerformanceHourly `json:"query_performance_24h"`
	PopularQueries           []PopularQuery           `json:"popular_queries"`
	ResponseTimeDistribution ResponseTimeDistribution `json:"response_time_distribution"`
}
