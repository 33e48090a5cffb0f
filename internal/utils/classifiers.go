package utils

import (
	"toolshed-backend/internal/domain"
)

// MembershipExpiringWindowDays is the look-ahead for membership renewal reminders.
const MembershipExpiringWindowDays = 30

// IsRentalLate reports whether a rental is still out past its end date. The end
// date itself belongs to the loan, so a rental becomes late the day after.
// It never changes the rental; the reconciliation job persists the late status.
func IsRentalLate(rental *domain.Rental, today domain.Date) bool {
	if rental.ActualReturnDate != nil {
		return false
	}
	switch rental.Status {
	case domain.RentalStatusCompleted, domain.RentalStatusRejected:
		return false
	default:
		return rental.EndDate.Before(today)
	}
}

// IsMembershipExpiringSoon reports whether expiry falls within the next 30 days,
// today included. Memberships that already expired are not "expiring".
func IsMembershipExpiringSoon(expiry *domain.Date, today domain.Date) bool {
	if expiry == nil {
		return false
	}
	return !expiry.Before(today) && expiry.Before(today.AddDays(MembershipExpiringWindowDays))
}

// IsMembershipExpired reports whether expiry is strictly before today.
func IsMembershipExpired(expiry *domain.Date, today domain.Date) bool {
	return expiry != nil && expiry.Before(today)
}
