package domain

import "time"

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusLate      RentalStatus = "late"
	RentalStatusRejected  RentalStatus = "rejected"
)

// rentalTransitions lists every allowed move. Statuses missing from the map, or
// mapped to nothing, are terminal.
var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusPending:   {RentalStatusActive, RentalStatusRejected},
	RentalStatusActive:    {RentalStatusCompleted, RentalStatusLate},
	RentalStatusLate:      {RentalStatusCompleted},
	RentalStatusCompleted: nil,
	RentalStatusRejected:  nil,
}

func (s RentalStatus) Valid() bool {
	_, ok := rentalTransitions[s]
	return ok
}

func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	for _, allowed := range rentalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RentalStatus) IsTerminal() bool {
	return len(rentalTransitions[s]) == 0
}

type Rental struct {
	ID               int32        `json:"id"`
	UserID           int32        `json:"user_id"`
	ToolID           int32        `json:"tool_id"`
	StartDate        Date         `json:"start_date"`
	EndDate          Date         `json:"end_date"`
	ActualReturnDate *Date        `json:"actual_return_date,omitempty"`
	Status           RentalStatus `json:"status"`
	TotalPriceCents  int32        `json:"total_price_cents"`
	PriceOverridden  bool         `json:"price_overridden"`
	ReturnComment    string       `json:"return_comment"`
	CreatedOn        time.Time    `json:"created_on"`
	UpdatedOn        time.Time    `json:"updated_on"`
}

// ReturnedLate reports whether the tool came back after the agreed end date.
func (r *Rental) ReturnedLate() bool {
	return r.ActualReturnDate != nil && r.ActualReturnDate.After(r.EndDate)
}

// RentalFilter narrows rental listings; zero values are ignored.
type RentalFilter struct {
	Status   RentalStatus
	UserID   int32
	ToolID   int32
	Page     int32
	PageSize int32
}
