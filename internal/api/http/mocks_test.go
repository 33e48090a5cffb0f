package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/service"
	"toolshed-backend/internal/utils"
)

// Each mock embeds its service interface; calling a method that is not
// stubbed below panics, which the recover middleware turns into a 500.

type MockAuthService struct {
	mock.Mock
	service.AuthService
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*domain.User), args.String(1), args.String(2), args.Error(3)
}

type MockToolService struct {
	mock.Mock
	service.ToolService
}

func (m *MockToolService) GetTool(ctx context.Context, id int32) (*domain.ToolMaintenanceView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ToolMaintenanceView), args.Error(1)
}

func (m *MockToolService) ListMaintenanceDue(ctx context.Context) ([]domain.ToolMaintenanceView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ToolMaintenanceView), args.Error(1)
}

func (m *MockToolService) SetToolStatus(ctx context.Context, id int32, status domain.ToolStatus) (*domain.ToolMaintenanceView, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ToolMaintenanceView), args.Error(1)
}

type MockUserService struct {
	mock.Mock
	service.UserService
}

func (m *MockUserService) GetUser(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) RenewMembership(ctx context.Context, id int32, months int32, feeCents int32) (*domain.User, *domain.Transaction, error) {
	args := m.Called(ctx, id, months, feeCents)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(*domain.Transaction), args.Error(2)
}

type MockRentalService struct {
	mock.Mock
	service.RentalService
}

func (m *MockRentalService) CreateRental(ctx context.Context, req service.CreateRentalRequest) (*domain.Rental, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) QuoteRental(ctx context.Context, toolID int32, start, end domain.Date) (*utils.RentalCostBreakdown, error) {
	args := m.Called(ctx, toolID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*utils.RentalCostBreakdown), args.Error(1)
}

func (m *MockRentalService) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}

func (m *MockRentalService) ActivateRental(ctx context.Context, id int32, priceOverrideCents *int32) (*domain.Rental, error) {
	args := m.Called(ctx, id, priceOverrideCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) ReturnRental(ctx context.Context, id int32, comment string) (*domain.Rental, *domain.Transaction, error) {
	args := m.Called(ctx, id, comment)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Rental), args.Get(1).(*domain.Transaction), args.Error(2)
}

type MockTransactionService struct {
	mock.Mock
	service.TransactionService
}

func (m *MockTransactionService) PayTransaction(ctx context.Context, id int32, method domain.PaymentMethod) (*domain.Transaction, error) {
	args := m.Called(ctx, id, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) PingContext(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
