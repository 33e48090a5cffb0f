package domain

import "time"

type TransactionType string

const (
	TransactionTypeRental        TransactionType = "Rental"
	TransactionTypeMembershipFee TransactionType = "MembershipFee"
	TransactionTypeRepairCost    TransactionType = "RepairCost"
	TransactionTypePayment       TransactionType = "Payment"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeRental, TransactionTypeMembershipFee, TransactionTypeRepairCost, TransactionTypePayment:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPaid    TransactionStatus = "paid"
)

func (s TransactionStatus) Valid() bool {
	return s == TransactionStatusPending || s == TransactionStatusPaid
}

// CanTransitionTo allows pending -> paid only.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	return s == TransactionStatusPending && next == TransactionStatusPaid
}

type PaymentMethod string

const (
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodCheck PaymentMethod = "check"
	PaymentMethodCash  PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodCheck, PaymentMethodCash:
		return true
	}
	return false
}

// Transaction is a charge or payment booked against a member. AmountCents never
// changes after creation.
type Transaction struct {
	ID          int32             `json:"id"`
	UserID      int32             `json:"user_id"`
	RentalID    *int32            `json:"rental_id,omitempty"`
	AmountCents int32             `json:"amount_cents"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Method      PaymentMethod     `json:"method"`
	Date        Date              `json:"date"`
	Description string            `json:"description"`
	PaidAt      *time.Time        `json:"paid_at,omitempty"`
	CreatedOn   time.Time         `json:"created_on"`
}

// DashboardSummary aggregates counters for the staff dashboard.
type DashboardSummary struct {
	RentalsByStatus          map[RentalStatus]int32 `json:"rentals_by_status"`
	ToolsByStatus            map[ToolStatus]int32   `json:"tools_by_status"`
	OutstandingDebtCents     int64                  `json:"outstanding_debt_cents"`
	LateRentals              int32                  `json:"late_rentals"`
	ExpiringMemberships      int32                  `json:"expiring_memberships"`
	MaintenanceBlockingTools int32                  `json:"maintenance_blocking_tools"`
}

// TransactionFilter narrows transaction listings; zero values are ignored.
type TransactionFilter struct {
	UserID   int32
	Status   TransactionStatus
	Type     TransactionType
	Page     int32
	PageSize int32
}
