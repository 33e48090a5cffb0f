package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"toolshed-backend/internal/jobs"
	"toolshed-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a scheduler evaluating cron expressions, seconds field
// included, in loc. It fails when any configured expression does not parse.
func NewScheduler(jobRunner *jobs.JobRunner, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	entries := []struct {
		name string
		spec string
		run  func()
	}{
		{"MarkLateRentals", cfg.MarkLateRentals, s.jobs.MarkLateRentals},
		{"SendLateReminders", cfg.SendLateReminders, s.jobs.SendLateReminders},
		{"SendMembershipReminders", cfg.SendMembershipReminders, s.jobs.SendMembershipReminders},
	}
	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.spec, e.run); err != nil {
			logger.Error("Failed to register job", "job", e.name, "spec", e.spec, "error", err)
			return fmt.Errorf("register %s: %w", e.name, err)
		}
		logger.Info("Registered job", "job", e.name, "spec", e.spec)
	}

	logger.Info("All cron jobs registered successfully")
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries returns the next run time of each registered job.
func (s *Scheduler) Entries() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		next = append(next, e.Next)
	}
	return next
}
