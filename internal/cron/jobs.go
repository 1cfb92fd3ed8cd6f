package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/floofbot/floofbridge/internal/provider"
)

// ThreadCompactor is the slice of the thread store the compaction job needs.
type ThreadCompactor interface {
	Compact(window time.Duration) int
}

// UserCompactor is the slice of the user store the compaction job needs.
type UserCompactor interface {
	Compact() int
}

// AvailabilityRecorder receives backend probe results; implemented by the
// gateway metrics.
type AvailabilityRecorder interface {
	SetBackendUp(up bool)
}

// BackendProbeJob periodically checks the inference backend and records
// the result so the status endpoint and metrics reflect reality between
// requests.
type BackendProbeJob struct {
	Checker      provider.HealthChecker
	Recorder     AvailabilityRecorder
	Logger       *slog.Logger
	Timeout      time.Duration // zero = 5s
	ScheduleExpr string        // empty = default "* * * * *"
}

var _ Job = (*BackendProbeJob)(nil)

// Name implements Job.
func (j *BackendProbeJob) Name() string { return "backend_probe" }

// Schedule implements Job.
func (j *BackendProbeJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "* * * * *"
}

// Run probes the backend once.
func (j *BackendProbeJob) Run(ctx context.Context) error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := j.Checker.HealthCheck(probeCtx)
	if j.Recorder != nil {
		j.Recorder.SetBackendUp(err == nil)
	}
	if err != nil {
		j.Logger.Warn("cron: backend probe failed", "error", err)
	}
	// A down backend is a recorded state, not a job failure.
	return nil
}

// MemoryCompactionJob physically removes expired turns and facts from the
// stores. The request path relies on lazy expiry and never needs this;
// the job only keeps the persisted documents from growing stale entries.
type MemoryCompactionJob struct {
	Threads       ThreadCompactor
	Users         UserCompactor
	HistoryWindow time.Duration
	Logger        *slog.Logger
	ScheduleExpr  string // empty = default "0 * * * *"
}

var _ Job = (*MemoryCompactionJob)(nil)

// Name implements Job.
func (j *MemoryCompactionJob) Name() string { return "memory_compaction" }

// Schedule implements Job.
func (j *MemoryCompactionJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 * * * *"
}

// Run compacts both stores.
func (j *MemoryCompactionJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	turns := j.Threads.Compact(j.HistoryWindow)
	facts := j.Users.Compact()
	if turns > 0 || facts > 0 {
		j.Logger.Info("cron: memory compacted", "turns_removed", turns, "facts_removed", facts)
	}
	return nil
}
