package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/space-chatbot/model"
)

// JobMetricsData represents job metrics data without mutex (safe for copying)
type JobMetricsData struct {
	JobsRegistered       int64                     `json:"jobs_registered"`
	RunsCompleted        int64                     `json:"runs_completed"`
	RunsFailed           int64                     `json:"runs_failed"`
	EntriesRemoved       int64                     `json:"entries_removed"`
	TotalExecutionTime   time.Duration             `json:"total_execution_time_ns"`
	AverageExecutionTime time.Duration             `json:"average_execution_time_ns"`
	RemovedByType        map[model.JobType]int64   `json:"removed_by_type"`
	JobsByStatus         map[model.JobStatus]int64 `json:"jobs_by_status"`
	SuccessRate          float64                   `json:"success_rate"`
}

// JobMetrics tracks sweep run metrics
type JobMetrics struct {
	mu                 sync.RWMutex
	jobsRegistered     int64
	runsCompleted      int64
	runsFailed         int64
	entriesRemoved     int64
	totalExecutionTime time.Duration
	removedByType      map[model.JobType]int64
	jobsByStatus       map[model.JobStatus]int64
}

// NewJobMetrics creates a new metrics collector
func NewJobMetrics() *JobMetrics {
	return &JobMetrics{
		removedByType: make(map[model.JobType]int64),
		jobsByStatus:  make(map[model.JobStatus]int64),
	}
}

// RecordJobCreated counts a newly registered job as pending
func (m *JobMetrics) RecordJobCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobsRegistered++
	if _, ok := m.removedByType[jobType]; !ok {
		m.removedByType[jobType] = 0
	}
	m.jobsByStatus[model.JobStatusPending]++
}

// RecordJobStatusChange updates status counters
func (m *JobMetrics) RecordJobStatusChange(oldStatus, newStatus model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldStatus != "" {
		m.jobsByStatus[oldStatus]--
		if m.jobsByStatus[oldStatus] <= 0 {
			delete(m.jobsByStatus, oldStatus)
		}
	}
	m.jobsByStatus[newStatus]++
}

// RecordJobCompleted records a successful sweep run
func (m *JobMetrics) RecordJobCompleted(jobType model.JobType, executionTime time.Duration, removed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runsCompleted++
	m.totalExecutionTime += executionTime
	m.entriesRemoved += int64(removed)
	m.removedByType[jobType] += int64(removed)
}

// RecordJobFailed records a failed sweep run
func (m *JobMetrics) RecordJobFailed(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runsFailed++
}

// GetMetrics returns a copy of current metrics
func (m *JobMetrics) GetMetrics() JobMetricsData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	removedByType := make(map[model.JobType]int64, len(m.removedByType))
	for k, v := range m.removedByType {
		removedByType[k] = v
	}
	jobsByStatus := make(map[model.JobStatus]int64, len(m.jobsByStatus))
	for k, v := range m.jobsByStatus {
		jobsByStatus[k] = v
	}

	data := JobMetricsData{
		JobsRegistered:     m.jobsRegistered,
		RunsCompleted:      m.runsCompleted,
		RunsFailed:         m.runsFailed,
		EntriesRemoved:     m.entriesRemoved,
		TotalExecutionTime: m.totalExecutionTime,
		RemovedByType:      removedByType,
		JobsByStatus:       jobsByStatus,
		SuccessRate:        1.0, // no runs yet
	}
	if m.runsCompleted > 0 {
		data.AverageExecutionTime = m.totalExecutionTime / time.Duration(m.runsCompleted)
	}
	if total := m.runsCompleted + m.runsFailed; total > 0 {
		data.SuccessRate = float64(m.runsCompleted) / float64(total)
	}
	return data
}
