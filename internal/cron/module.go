package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/floofbot/floofbridge/internal/core"
	"github.com/floofbot/floofbridge/internal/memory"
	"github.com/floofbot/floofbridge/internal/provider"
)

func init() {
	core.RegisterModule(&Module{})
}

// ModuleConfig configures the maintenance module.
type ModuleConfig struct {
	// ProbeSchedule is the backend probe cron expression. "off" disables
	// the probe.
	ProbeSchedule string `yaml:"probe_schedule"`

	// ProbeTimeout bounds a single probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// CompactionSchedule enables periodic physical removal of expired
	// memory. Empty = disabled: the request path filters expired data on
	// read and the persisted documents keep the lazily expired entries.
	CompactionSchedule string `yaml:"compaction_schedule"`
}

func (c *ModuleConfig) defaults() {
	if c.ProbeSchedule == "" {
		c.ProbeSchedule = "* * * * *"
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 5 * time.Second
	}
}

// Module wires the scheduler into the app lifecycle.
type Module struct {
	config    ModuleConfig
	logger    *slog.Logger
	appCtx    *core.AppContext
	scheduler *Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "cron.maintenance",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return err
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger
	m.appCtx = ctx
	m.scheduler = NewScheduler(ctx.Logger)
	return nil
}

// Start implements core.Starter. Jobs are registered here because their
// dependencies come from the service registry, complete only after every
// module has provisioned.
func (m *Module) Start() error {
	if m.config.ProbeSchedule != "off" {
		svc, ok := m.appCtx.Service("provider.llm")
		if !ok {
			return errors.New("cron: provider.llm service not available")
		}
		checker, ok := svc.(provider.HealthChecker)
		if ok {
			job := &BackendProbeJob{
				Checker:      checker,
				Logger:       m.logger,
				Timeout:      m.config.ProbeTimeout,
				ScheduleExpr: m.config.ProbeSchedule,
			}
			if rec, ok := m.appCtx.Service("gateway.metrics"); ok {
				job.Recorder, _ = rec.(AvailabilityRecorder)
			}
			if err := m.scheduler.RegisterJob(job); err != nil {
				return err
			}
		}
	}

	if m.config.CompactionSchedule != "" {
		threadsSvc, ok := m.appCtx.Service("memory.threads")
		if !ok {
			return errors.New("cron: memory.threads service not available")
		}
		usersSvc, ok := m.appCtx.Service("memory.users")
		if !ok {
			return errors.New("cron: memory.users service not available")
		}
		job := &MemoryCompactionJob{
			Threads:       threadsSvc.(*memory.ThreadStore),
			Users:         usersSvc.(*memory.UserStore),
			HistoryWindow: memory.HistoryWindow,
			Logger:        m.logger,
			ScheduleExpr:  m.config.CompactionSchedule,
		}
		if err := m.scheduler.RegisterJob(job); err != nil {
			return err
		}
	}

	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Stop(ctx)
}

// Compile-time interface assertions.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)
