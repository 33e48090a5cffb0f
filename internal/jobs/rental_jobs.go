package jobs

import (
	"context"
	"fmt"

	"toolshed-backend/internal/logger"
)

// MarkLateRentals promotes active rentals past their end date to late
func (jr *JobRunner) MarkLateRentals() {
	jr.runWithRecovery("MarkLateRentals", func(ctx context.Context) error {
		promoted, err := jr.services.Rental.ReconcileLateRentals(ctx)
		if err != nil {
			return fmt.Errorf("reconcile late rentals: %w", err)
		}

		logger.Info("Marked rentals as late", "count", len(promoted))
		for _, rental := range promoted {
			logger.Debug("Marked rental as late",
				"rental_id", rental.ID,
				"user_id", rental.UserID,
				"tool_id", rental.ToolID,
				"end_date", rental.EndDate)
		}
		return nil
	})
}

// SendLateReminders emails every member holding a late rental. A failed
// reminder is logged and the job moves on to the next rental.
func (jr *JobRunner) SendLateReminders() {
	jr.runWithRecovery("SendLateReminders", func(ctx context.Context) error {
		if jr.services.Notifier == nil {
			logger.Warn("Email not configured, skipping late rental reminders")
			return nil
		}

		late, err := jr.services.Rental.ListLateRentals(ctx)
		if err != nil {
			return fmt.Errorf("list late rentals: %w", err)
		}

		today := jr.clock.Today()
		sent, failed := 0, 0
		for i := range late {
			rental := &late[i]
			user, err := jr.services.User.GetUser(ctx, rental.UserID)
			if err != nil {
				logger.Error("Failed to load renter", "rental_id", rental.ID, "user_id", rental.UserID, "error", err)
				failed++
				continue
			}
			view, err := jr.services.Tool.GetTool(ctx, rental.ToolID)
			if err != nil {
				logger.Error("Failed to load tool", "rental_id", rental.ID, "tool_id", rental.ToolID, "error", err)
				failed++
				continue
			}

			daysLate := rental.EndDate.DaysUntil(today)
			if err := jr.services.Notifier.SendLateRentalReminder(ctx, user, &view.Tool, rental, daysLate); err != nil {
				logger.Error("Failed to send late rental reminder", "rental_id", rental.ID, "email", user.Email, "error", err)
				failed++
				continue
			}
			sent++
		}

		logger.Info("Sent late rental reminders", "sent", sent, "failed", failed)
		return nil
	})
}
