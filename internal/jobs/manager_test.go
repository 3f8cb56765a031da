package jobs

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/gcbaptista/space-chatbot/internal/errors"
	"github.com/gcbaptista/space-chatbot/model"
)

func TestJobManager_Register(t *testing.T) {
	manager := NewManager()
	defer manager.Stop()

	jobID, err := manager.Register(model.JobTypeCacheSweep, time.Minute, func() int { return 0 })
	if err != nil {
		t.Fatalf("Failed to register job: %v", err)
	}
	if jobID == "" {
		t.Error("Expected non-empty job ID")
	}

	jobs := manager.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Status != model.JobStatusPending {
		t.Errorf("Expected job status %s, got %s", model.JobStatusPending, jobs[0].Status)
	}
	if jobs[0].Interval != time.Minute {
		t.Errorf("Expected interval 1m, got %v", jobs[0].Interval)
	}

	if _, err := manager.Register(model.JobTypeCacheSweep, time.Minute, func() int { return 0 }); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Expected duplicate registration to fail with invalid input, got %v", err)
	}
	if _, err := manager.Register(model.JobTypeSessionSweep, 0, func() int { return 0 }); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Expected zero interval to be rejected, got %v", err)
	}
}

func TestJobManager_RunNow(t *testing.T) {
	var observed int
	manager := NewManager(WithObserver(func(_ model.JobType, _ time.Duration, removed int, failed bool) {
		if !failed {
			observed += removed
		}
	}))
	defer manager.Stop()

	if _, err := manager.Register(model.JobTypeRateLimitSweep, time.Hour, func() int { return 3 }); err != nil {
		t.Fatalf("Failed to register job: %v", err)
	}

	removed, err := manager.RunNow(model.JobTypeRateLimitSweep)
	if err != nil {
		t.Fatalf("RunNow failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 removed entries, got %d", removed)
	}
	if observed != 3 {
		t.Errorf("Expected observer to see 3 removed entries, got %d", observed)
	}

	job := manager.Jobs()[0]
	if job.Status != model.JobStatusIdle {
		t.Errorf("Expected job status %s, got %s", model.JobStatusIdle, job.Status)
	}
	if job.Runs != 1 || job.Removed != 3 {
		t.Errorf("Expected runs=1 removed=3, got runs=%d removed=%d", job.Runs, job.Removed)
	}
	if job.LastRunAt == nil {
		t.Error("Expected LastRunAt to be set")
	}

	if _, err := manager.RunNow(model.JobTypeSessionSweep); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected not found for unregistered job, got %v", err)
	}
}

func TestJobManager_LogsWithComponentAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	manager := NewManager(WithLogger(logger))

	if _, err := manager.Register(model.JobTypeCacheSweep, time.Minute, func() int { return 2 }); err != nil {
		t.Fatalf("Failed to register job: %v", err)
	}
	if _, err := manager.RunNow(model.JobTypeCacheSweep); err != nil {
		t.Fatalf("RunNow failed: %v", err)
	}
	manager.Stop()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 3 {
		t.Fatalf("Expected register, sweep and stop log lines, got %q", buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, "component=jobs") {
			t.Errorf("Expected component attribute in %q", line)
		}
	}
	if !strings.Contains(buf.String(), "type=cache_sweep removed=2") {
		t.Errorf("Expected typed sweep attributes, got %q", buf.String())
	}
}

func TestJobManager_PanickingSweepMarksFailed(t *testing.T) {
	manager := NewManager()
	defer manager.Stop()

	if _, err := manager.Register(model.JobTypeSessionSweep, time.Hour, func() int { panic("boom") }); err != nil {
		t.Fatalf("Failed to register job: %v", err)
	}

	if _, err := manager.RunNow(model.JobTypeSessionSweep); err == nil {
		t.Fatal("Expected error from panicking sweep")
	}

	job := manager.Jobs()[0]
	if job.Status != model.JobStatusFailed {
		t.Errorf("Expected job status %s, got %s", model.JobStatusFailed, job.Status)
	}
	if job.Error == "" {
		t.Error("Expected job error to be recorded")
	}

	metrics := manager.GetMetrics()
	if metrics.RunsFailed != 1 {
		t.Errorf("Expected 1 failed run, got %d", metrics.RunsFailed)
	}
	if metrics.SuccessRate != 0 {
		t.Errorf("Expected success rate 0, got %f", metrics.SuccessRate)
	}
}

func TestJobManager_StartRunsOnTicker(t *testing.T) {
	var runs atomic.Int64
	manager := NewManager()

	if _, err := manager.Register(model.JobTypeCacheSweep, 5*time.Millisecond, func() int {
		runs.Add(1)
		return 1
	}); err != nil {
		t.Fatalf("Failed to register job: %v", err)
	}

	manager.Start()
	deadline := time.Now().Add(time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	manager.Stop()
	manager.Stop()

	if runs.Load() < 2 {
		t.Errorf("Expected at least 2 ticker runs, got %d", runs.Load())
	}

	job := manager.Jobs()[0]
	if job.Status != model.JobStatusStopped {
		t.Errorf("Expected job status %s, got %s", model.JobStatusStopped, job.Status)
	}

	if _, err := manager.Register(model.JobTypeSessionSweep, time.Minute, func() int { return 0 }); err == nil {
		t.Error("Expected registration after start to fail")
	}
}
