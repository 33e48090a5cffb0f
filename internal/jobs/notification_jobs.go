package jobs

import (
	"context"
	"fmt"

	"toolshed-backend/internal/logger"
)

// SendMembershipReminders emails members whose membership expires within the
// renewal window.
func (jr *JobRunner) SendMembershipReminders() {
	jr.runWithRecovery("SendMembershipReminders", func(ctx context.Context) error {
		if jr.services.Notifier == nil {
			logger.Warn("Email not configured, skipping membership reminders")
			return nil
		}

		users, err := jr.services.User.ListExpiringMemberships(ctx)
		if err != nil {
			return fmt.Errorf("list expiring memberships: %w", err)
		}

		sent := 0
		for i := range users {
			user := &users[i]
			if user.MembershipExpiry == nil {
				continue
			}
			if err := jr.services.Notifier.SendMembershipExpiryReminder(ctx, user, *user.MembershipExpiry); err != nil {
				logger.Error("Failed to send membership reminder", "user_id", user.ID, "email", user.Email, "error", err)
				continue
			}
			sent++
		}

		logger.Info("Sent membership reminders", "sent", sent, "candidates", len(users))
		return nil
	})
}
