package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// simpleJob is a minimal Job for scheduler tests.
type simpleJob struct {
	name     string
	schedule string
	runFunc  func(ctx context.Context) error
	mu       sync.Mutex
	calls    int
}

func (j *simpleJob) Name() string     { return j.name }
func (j *simpleJob) Schedule() string { return j.schedule }
func (j *simpleJob) Run(ctx context.Context) error {
	j.mu.Lock()
	j.calls++
	j.mu.Unlock()
	if j.runFunc != nil {
		return j.runFunc(ctx)
	}
	return nil
}

func TestScheduler_RegisterJob_DuplicateName(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := s.RegisterJob(&simpleJob{name: "probe", schedule: "* * * * *"}); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := s.RegisterJob(&simpleJob{name: "probe", schedule: "* * * * *"}); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestScheduler_Start_InvalidSchedule(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	_ = s.RegisterJob(&simpleJob{name: "bad", schedule: "not a schedule"})

	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	_ = s.RegisterJob(&simpleJob{name: "probe", schedule: "* * * * *"})

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	t.Parallel()

	var jobCtx context.Context
	ready := make(chan struct{})
	s := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	_ = s.RegisterJob(&simpleJob{
		name:     "ctx",
		schedule: "* * * * *",
		runFunc: func(ctx context.Context) error {
			jobCtx = ctx
			close(ready)
			return nil
		},
	})

	// Drive the job directly; waiting a minute for a tick is not viable.
	s.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	job := s.jobs[0]
	s.mu.Unlock()
	go func() { _ = job.Run(ctx) }()
	<-ready

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-jobCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("job context not cancelled by Stop")
	}
	if !errors.Is(jobCtx.Err(), context.Canceled) {
		t.Errorf("jobCtx.Err() = %v", jobCtx.Err())
	}
}
