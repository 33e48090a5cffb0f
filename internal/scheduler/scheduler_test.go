package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolshed-backend/internal/config"
	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/jobs"
	"toolshed-backend/internal/utils"
)

func runner(sched config.SchedulerConfig) *jobs.JobRunner {
	cfg := &config.Config{Scheduler: sched}
	return jobs.NewJobRunner(&jobs.Services{}, cfg, nil, utils.NewFixedClock(domain.NewDate(2026, time.January, 10)))
}

func TestNewScheduler(t *testing.T) {
	t.Run("Registers every job", func(t *testing.T) {
		s, err := NewScheduler(runner(config.SchedulerConfig{
			MarkLateRentals:         "0 0 * * * *",
			SendLateReminders:       "0 0 9 * * *",
			SendMembershipReminders: "0 0 8 * * 1",
		}), time.UTC)
		require.NoError(t, err)
		assert.Len(t, s.cron.Entries(), 3)
	})

	t.Run("Rejects an invalid expression", func(t *testing.T) {
		_, err := NewScheduler(runner(config.SchedulerConfig{
			MarkLateRentals:         "every hour",
			SendLateReminders:       "0 0 9 * * *",
			SendMembershipReminders: "0 0 8 * * 1",
		}), nil)
		assert.ErrorContains(t, err, "MarkLateRentals")
	})

	t.Run("Five field expressions need seconds", func(t *testing.T) {
		_, err := NewScheduler(runner(config.SchedulerConfig{
			MarkLateRentals:         "0 * * * *",
			SendLateReminders:       "0 0 9 * * *",
			SendMembershipReminders: "0 0 8 * * 1",
		}), nil)
		assert.Error(t, err)
	})
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler(runner(config.SchedulerConfig{
		MarkLateRentals:         "0 0 * * * *",
		SendLateReminders:       "0 0 9 * * *",
		SendMembershipReminders: "0 0 8 * * 1",
	}), time.UTC)
	require.NoError(t, err)

	s.Start()
	next := s.Entries()
	require.Len(t, next, 3)
	for _, at := range next {
		assert.True(t, at.After(time.Now().Add(-time.Second)))
	}
	s.Stop()
}
