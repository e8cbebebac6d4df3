/**
 * @description
 * Cron scheduler setup for the recurring transfer job.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	spec   string
}

// NewScheduler creates a new scheduler instance. spec is a standard cron expression
// controlling how often due schedules are polled.
func NewScheduler(jobs *Jobs, logger *slog.Logger, spec string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		spec:   spec,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.spec, s.jobs.RunDueSchedules); err != nil {
		s.logger.Error("failed to schedule recurring transfer job", "error", err)
	} else {
		s.logger.Info("scheduled recurring transfer job", "schedule", s.spec)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
