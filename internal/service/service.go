package service

import (
	"context"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/utils"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error) // user, access, refresh
	RefreshToken(ctx context.Context, refresh string) (string, string, error)
}

type CategoryService interface {
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	GetCategory(ctx context.Context, id int32) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, id int32, name string) (*domain.Category, error)
}

type ToolService interface {
	AddTool(ctx context.Context, tool *domain.Tool) error
	GetTool(ctx context.Context, id int32) (*domain.ToolMaintenanceView, error)
	UpdateTool(ctx context.Context, tool *domain.Tool) error
	SetToolStatus(ctx context.Context, id int32, status domain.ToolStatus) (*domain.ToolMaintenanceView, error)
	ListTools(ctx context.Context, filter domain.ToolFilter) ([]domain.ToolMaintenanceView, int32, error)
	RecordMaintenance(ctx context.Context, id int32, serviced *domain.Date) (*domain.ToolMaintenanceView, error)
	ListMaintenanceDue(ctx context.Context) ([]domain.ToolMaintenanceView, error)
}

type UserService interface {
	CreateUser(ctx context.Context, user *domain.User, password string) error
	GetUser(ctx context.Context, id int32) (*domain.User, error)
	ListUsers(ctx context.Context, status domain.UserStatus, page, pageSize int32) ([]domain.User, int32, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	SetUserStatus(ctx context.Context, id int32, status domain.UserStatus) (*domain.User, error)
	RenewMembership(ctx context.Context, id int32, months int32, feeCents int32) (*domain.User, *domain.Transaction, error)
	ListExpiringMemberships(ctx context.Context) ([]domain.User, error)
	ListExpiredMemberships(ctx context.Context) ([]domain.User, error)
}

// CreateRentalRequest describes a new loan. When PriceOverrideCents is nil the
// price comes from the tool's weekly rate.
type CreateRentalRequest struct {
	UserID             int32
	ToolID             int32
	StartDate          domain.Date
	EndDate            domain.Date
	PriceOverrideCents *int32
	Activate           bool
}

type RentalService interface {
	CreateRental(ctx context.Context, req CreateRentalRequest) (*domain.Rental, error)
	QuoteRental(ctx context.Context, toolID int32, start, end domain.Date) (*utils.RentalCostBreakdown, error)
	GetRental(ctx context.Context, id int32) (*domain.Rental, error)
	ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error)
	ActivateRental(ctx context.Context, id int32, priceOverrideCents *int32) (*domain.Rental, error)
	RejectRental(ctx context.Context, id int32) (*domain.Rental, error)
	ReturnRental(ctx context.Context, id int32, comment string) (*domain.Rental, *domain.Transaction, error)
	MarkLate(ctx context.Context, id int32) (*domain.Rental, error)
	ReconcileLateRentals(ctx context.Context) ([]domain.Rental, error)
	ListLateRentals(ctx context.Context) ([]domain.Rental, error)
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, txn *domain.Transaction) error
	GetTransaction(ctx context.Context, id int32) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int32, error)
	PayTransaction(ctx context.Context, id int32, method domain.PaymentMethod) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id int32) error
	GetUserDebt(ctx context.Context, userID int32) (int32, error)
}

type DashboardService interface {
	GetSummary(ctx context.Context) (*domain.DashboardSummary, error)
}

// NotificationSender delivers member-facing reminders. The lending core never
// calls it; scheduled jobs do.
type NotificationSender interface {
	SendLateRentalReminder(ctx context.Context, user *domain.User, tool *domain.Tool, rental *domain.Rental, daysLate int) error
	SendMembershipExpiryReminder(ctx context.Context, user *domain.User, expiry domain.Date) error
}
