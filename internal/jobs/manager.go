package jobs

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/space-chatbot/internal/clock"
	"github.com/gcbaptista/space-chatbot/internal/errors"
	"github.com/gcbaptista/space-chatbot/model"
)

// SweepFunc removes expired entries from a store and returns how many were removed.
type SweepFunc func() int

// RunObserver is notified after every sweep run.
type RunObserver func(jobType model.JobType, duration time.Duration, removed int, failed bool)

type registeredJob struct {
	job   *model.Job
	sweep SweepFunc
}

// Manager owns the periodic background sweeps of the in-memory stores.
// Jobs are registered before Start and run on their own ticker until Stop.
type Manager struct {
	mu       sync.RWMutex
	jobs     map[model.JobType]*registeredJob
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	started  bool
	metrics  *JobMetrics
	observer RunObserver
	clock    clock.Clock
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used to timestamp runs.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithObserver registers a callback invoked after each run.
func WithObserver(observer RunObserver) Option {
	return func(m *Manager) {
		m.observer = observer
	}
}

// NewManager creates an idle job manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		jobs:     make(map[model.JobType]*registeredJob),
		stopChan: make(chan struct{}),
		metrics:  NewJobMetrics(),
		clock:    clock.Real{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(slog.String("component", "jobs"))
	return m
}

// Register adds a periodic sweep. It must be called before Start.
func (m *Manager) Register(jobType model.JobType, interval time.Duration, sweep SweepFunc) (string, error) {
	if interval <= 0 {
		return "", errors.NewValidationError("interval", "must be positive")
	}
	if sweep == nil {
		return "", errors.NewValidationError("sweep", "is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return "", fmt.Errorf("job manager already started, cannot register %s", jobType)
	}
	if _, exists := m.jobs[jobType]; exists {
		return "", errors.NewValidationError("type", fmt.Sprintf("job %s already registered", jobType))
	}

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		Interval:  interval,
		CreatedAt: m.clock.Now(),
	}
	m.jobs[jobType] = &registeredJob{job: job, sweep: sweep}
	m.metrics.RecordJobCreated(jobType)
	m.logger.Debug("Registered background job",
		slog.String("id", job.ID),
		slog.String("type", string(jobType)),
		slog.Duration("interval", interval))
	return job.ID, nil
}

// Start launches one ticker goroutine per registered job.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	entries := make([]*registeredJob, 0, len(m.jobs))
	for _, entry := range m.jobs {
		entries = append(entries, entry)
	}
	m.mu.Unlock()

	for _, entry := range entries {
		m.wg.Add(1)
		go m.loop(entry.job.Type, entry.job.Interval)
	}
	m.logger.Info("Job manager started", slog.Int("jobs", len(entries)))
}

// Stop halts every job and waits for in-flight runs to finish. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()

		m.mu.Lock()
		for _, entry := range m.jobs {
			m.setStatus(entry.job, model.JobStatusStopped)
		}
		m.mu.Unlock()
		m.logger.Info("Job manager stopped")
	})
}

func (m *Manager) loop(jobType model.JobType, interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.RunNow(jobType); err != nil {
				m.logger.Warn("Background job failed",
					slog.String("type", string(jobType)),
					slog.String("error", err.Error()))
			}
		case <-m.stopChan:
			return
		}
	}
}

// RunNow executes a job synchronously and returns the number of entries it removed.
// A panic inside the sweep marks the job failed instead of crashing the process.
func (m *Manager) RunNow(jobType model.JobType) (removed int, err error) {
	m.mu.Lock()
	entry, exists := m.jobs[jobType]
	if !exists {
		m.mu.Unlock()
		return 0, fmt.Errorf("job %s: %w", jobType, errors.ErrNotFound)
	}
	m.setStatus(entry.job, model.JobStatusRunning)
	m.mu.Unlock()

	start := m.clock.Now()
	began := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep panicked: %v", r)
		}
		elapsed := time.Since(began)
		m.finish(entry.job, start, elapsed, removed, err)
	}()

	removed = entry.sweep()
	return removed, nil
}

func (m *Manager) finish(job *model.Job, startedAt time.Time, elapsed time.Duration, removed int, err error) {
	m.mu.Lock()
	job.Runs++
	job.LastRunAt = &startedAt
	job.LastDuration = elapsed
	if err != nil {
		job.Error = err.Error()
		m.setStatus(job, model.JobStatusFailed)
		m.metrics.RecordJobFailed(job.Type)
	} else {
		job.Error = ""
		job.Removed += int64(removed)
		m.setStatus(job, model.JobStatusIdle)
		m.metrics.RecordJobCompleted(job.Type, elapsed, removed)
	}
	jobType := job.Type
	m.mu.Unlock()

	if removed > 0 {
		m.logger.Debug("Sweep removed entries",
			slog.String("type", string(jobType)),
			slog.Int("removed", removed),
			slog.Duration("duration", elapsed))
	}
	if m.observer != nil {
		m.observer(jobType, elapsed, removed, err != nil)
	}
}

// setStatus must be called with m.mu held.
func (m *Manager) setStatus(job *model.Job, status model.JobStatus) {
	if job.Status == status {
		return
	}
	m.metrics.RecordJobStatusChange(job.Status, status)
	job.Status = status
}

// Jobs returns a snapshot of every registered job ordered by type.
func (m *Manager) Jobs() []model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]model.Job, 0, len(m.jobs))
	for _, entry := range m.jobs {
		jobCopy := *entry.job
		if entry.job.LastRunAt != nil {
			lastRun := *entry.job.LastRunAt
			jobCopy.LastRunAt = &lastRun
		}
		result = append(result, jobCopy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// GetMetrics returns aggregate run metrics.
func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.GetMetrics()
}
