package model

import (
	"time"
)

// JobStatus represents the state of a periodic background job
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusIdle    JobStatus = "idle"
	JobStatusFailed  JobStatus = "failed"
	JobStatusStopped JobStatus = "stopped"
)

// JobType represents the kind of sweep a job performs
type JobType string

const (
	JobTypeCacheSweep     JobType = "cache_sweep"
	JobTypeRateLimitSweep JobType = "ratelimit_sweep"
	JobTypeSessionSweep   JobType = "session_sweep"
)

// Job represents a periodic background operation owned by the job manager
type Job struct {
	ID           string        `json:"id"`
	Type         JobType       `json:"type"`
	Status       JobStatus     `json:"status"`
	Interval     time.Duration `json:"interval_ns"`
	Runs         int64         `json:"runs"`
	Removed      int64         `json:"removed"` // entries removed across all runs
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	LastRunAt    *time.Time    `json:"last_run_at,omitempty"`
	LastDuration time.Duration `json:"last_duration_ns"`
}
