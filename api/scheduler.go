/*
scheduler.go - Periodic rating recompute

PURPOSE:
  Recomputes every member's snapshot on a cron schedule, so weekly windows
  roll over even when no record is written.

DESIGN:
  - robfig/cron drives the schedule (standard 5-field spec or @every/@daily)
  - Runs are serialised: a tick that fires while a run is still going is
    skipped, and RunNow waits for the running one
  - A panic inside a run is recovered and logged

CONFIGURATION:
  - Schedule: cron spec (default: @every 1h)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewRecomputeScheduler(handler, "@every 1h", logger)
  if err := scheduler.Start(); err != nil { ... }
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RecomputeAll endpoint (manual recompute)
  - rating/pipeline.go: Pipeline.RecomputeAll
*/
package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/dexim234/apevaultteams/monitoring"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultRecomputeSchedule is used when no schedule is configured.
const DefaultRecomputeSchedule = "@every 1h"

// RecomputeScheduler recomputes every snapshot on a schedule.
type RecomputeScheduler struct {
	Handler  *Handler
	Schedule string
	Enabled  bool
	Logger   logrus.FieldLogger

	cron  *cron.Cron
	mu    sync.Mutex
	runMu sync.Mutex
}

// NewRecomputeScheduler creates a new scheduler.
func NewRecomputeScheduler(h *Handler, schedule string, logger logrus.FieldLogger) *RecomputeScheduler {
	if schedule == "" {
		schedule = DefaultRecomputeSchedule
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RecomputeScheduler{
		Handler:  h,
		Schedule: schedule,
		Enabled:  true,
		Logger:   logger.WithField("component", "scheduler"),
	}
}

// Start begins the scheduler. An unparseable schedule is an error.
func (rs *RecomputeScheduler) Start() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Logger.Info("scheduler disabled, not starting")
		return nil
	}
	if rs.cron != nil {
		return nil
	}

	cronLogger := cron.PrintfLogger(rs.Logger)
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))
	if _, err := c.AddFunc(rs.Schedule, rs.run); err != nil {
		return fmt.Errorf("invalid recompute schedule %q: %w", rs.Schedule, err)
	}
	c.Start()
	rs.cron = c

	rs.Logger.WithField("schedule", rs.Schedule).Info("scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running recompute to finish.
func (rs *RecomputeScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.cron != nil {
		<-rs.cron.Stop().Done()
		rs.cron = nil
		rs.Logger.Info("scheduler stopped")
	}
}

func (rs *RecomputeScheduler) run() {
	if _, err := rs.RunNow(context.Background()); err != nil {
		rs.Logger.WithError(err).Error("scheduled recompute failed")
	}
}

// RunNow recomputes every member as of today.
func (rs *RecomputeScheduler) RunNow(ctx context.Context) (RecomputeAllResponse, error) {
	rs.runMu.Lock()
	defer rs.runMu.Unlock()

	monitoring.SchedulerRunsTotal.Inc()
	resp, err := rs.Handler.recomputeAll(ctx, rs.Handler.today())
	if err != nil {
		return resp, err
	}

	entry := rs.Logger.WithFields(logrus.Fields{
		"as_of":      resp.AsOf,
		"recomputed": resp.Recomputed,
		"failed":     resp.Failed,
	})
	if resp.Failed > 0 {
		entry.Warn("recompute completed with failures")
	} else {
		entry.Info("recompute completed")
	}
	return resp, nil
}
