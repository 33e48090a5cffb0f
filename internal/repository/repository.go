package repository

import (
	"context"

	"toolshed-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, status domain.UserStatus, page, pageSize int32) ([]domain.User, int32, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateStatus(ctx context.Context, id int32, status domain.UserStatus) error
	UpdateMembershipExpiry(ctx context.Context, id int32, expiry domain.Date) error
	// ListMembershipsExpiringBefore returns active users whose membership ends
	// before the given date, including those already expired.
	ListMembershipsExpiringBefore(ctx context.Context, before domain.Date) ([]domain.User, error)

	// RecomputeDebt rewrites the cached debt from the user's pending transactions
	// and returns the new value. Call it with the same DBTX that changed them.
	RecomputeDebt(ctx context.Context, userID int32) (int32, error)
	TotalOutstandingDebt(ctx context.Context) (int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id int32) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
}

type ToolRepository interface {
	Create(ctx context.Context, tool *domain.Tool) error
	GetByID(ctx context.Context, id int32) (*domain.Tool, error)
	// Update writes descriptive and schedule fields. Status changes go through
	// UpdateStatus.
	Update(ctx context.Context, tool *domain.Tool) error
	List(ctx context.Context, filter domain.ToolFilter) ([]domain.Tool, int32, error)
	// ListWithMaintenanceSchedule returns every tool that has both a last
	// maintenance date and an interval.
	ListWithMaintenanceSchedule(ctx context.Context) ([]domain.Tool, error)
	// UpdateStatus moves the tool from one status to another only if it is still
	// in the expected status; otherwise it returns a *domain.ConflictError.
	UpdateStatus(ctx context.Context, id int32, expected, next domain.ToolStatus) error
	RecordMaintenance(ctx context.Context, id int32, serviced domain.Date) error
	CountByStatus(ctx context.Context) (map[domain.ToolStatus]int32, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error)
	// ListOpenEndingBefore returns unreturned active or late rentals whose end
	// date is before the given date.
	ListOpenEndingBefore(ctx context.Context, before domain.Date) ([]domain.Rental, error)
	// UpdateStatus persists the rental's status and settlement fields only if
	// the stored status still equals expected; otherwise it returns a
	// *domain.ConflictError.
	UpdateStatus(ctx context.Context, rental *domain.Rental, expected domain.RentalStatus) error
	CountByStatus(ctx context.Context) (map[domain.RentalStatus]int32, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id int32) (*domain.Transaction, error)
	GetByRentalID(ctx context.Context, rentalID int32) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int32, error)
	// MarkPaid moves a pending transaction to paid; a transaction that is no
	// longer pending yields a *domain.ConflictError.
	MarkPaid(ctx context.Context, tx *domain.Transaction) error
	Delete(ctx context.Context, id int32) error
}

// Repositories groups the repositories bound to one connection or SQL
// transaction.
type Repositories struct {
	Users        UserRepository
	Categories   CategoryRepository
	Tools        ToolRepository
	Rentals      RentalRepository
	Transactions TransactionRepository
}

// UnitOfWork runs fn with repositories bound to a single SQL transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
