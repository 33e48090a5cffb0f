package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"toolshed-backend/internal/config"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/service"
	"toolshed-backend/internal/utils"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	locker   Locker
	clock    utils.Clock
}

// Services holds all service dependencies needed by jobs. Notifier may be nil,
// in which case reminder jobs do nothing.
type Services struct {
	Rental   service.RentalService
	User     service.UserService
	Tool     service.ToolService
	Notifier service.NotificationSender
}

// NewJobRunner creates a new job runner. A nil locker runs every job without
// coordination, which is fine for a single cronjob instance.
func NewJobRunner(services *Services, cfg *config.Config, locker Locker, clock utils.Clock) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		locker:   locker,
		clock:    clock,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// jobs lists the runnable jobs by name.
func (jr *JobRunner) jobs() map[string]func() {
	return map[string]func(){
		"MarkLateRentals":         jr.MarkLateRentals,
		"SendLateReminders":       jr.SendLateReminders,
		"SendMembershipReminders": jr.SendMembershipReminders,
	}
}

// JobNames returns the names accepted by RunJob.
func (jr *JobRunner) JobNames() []string {
	names := make([]string, 0, 3)
	for name := range jr.jobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunJob runs a single job by name (for manual execution)
func (jr *JobRunner) RunJob(name string) error {
	job, ok := jr.jobs()[name]
	if !ok {
		return fmt.Errorf("unknown job %q, expected one of %v", name, jr.JobNames())
	}
	job()
	return nil
}

// RunAll runs every job once in dependency order
func (jr *JobRunner) RunAll() {
	jr.MarkLateRentals()
	jr.SendLateReminders()
	jr.SendMembershipReminders()
}

// runWithRecovery wraps job execution with the distributed lock and panic
// recovery. A job whose lock is held elsewhere is skipped.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	ctx := context.Background()

	if jr.locker != nil {
		release, acquired, err := jr.locker.Acquire(ctx, jobName, jr.config.LockTTL())
		if err != nil {
			logger.Error("Failed to acquire job lock", "job", jobName, "error", err)
			return
		}
		if !acquired {
			logger.Info("Job already running elsewhere, skipping", "job", jobName)
			return
		}
		defer release()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	started := time.Now()
	logger.Info("Starting job", "job", jobName)
	if err := jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration", time.Since(started))
		return
	}
	logger.Info("Job completed", "job", jobName, "duration", time.Since(started))
}
