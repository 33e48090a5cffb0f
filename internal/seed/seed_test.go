package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/service"
)

type MockCategoryService struct {
	mock.Mock
	service.CategoryService
}

func (m *MockCategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

type MockUserService struct {
	mock.Mock
	service.UserService
}

func (m *MockUserService) CreateUser(ctx context.Context, user *domain.User, password string) error {
	args := m.Called(ctx, user, password)
	return args.Error(0)
}

type MockToolService struct {
	mock.Mock
	service.ToolService
}

func (m *MockToolService) ListTools(ctx context.Context, filter domain.ToolFilter) ([]domain.ToolMaintenanceView, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ToolMaintenanceView), args.Get(1).(int32), args.Error(2)
}

func (m *MockToolService) AddTool(ctx context.Context, tool *domain.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}

const seedYAML = `
categories:
  - Power Tools
users:
  - name: Front Desk
    email: desk@example.com
    role: staff
    password: change-me-now
  - name: Ada Lovelace
    email: ada@example.com
    membership_expiry: "2026-12-31"
tools:
  - title: Cordless Drill
    category: power tools
    weekly_price_cents: 1500
    last_maintenance_date: "2025-06-01"
    maintenance_interval_months: 12
    maintenance_importance: medium
  - title: Lawn Mower
    category: Garden
    weekly_price_cents: 2500
`

func writeSeedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	data, err := Load(writeSeedFile(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Power Tools"}, data.Categories)
	require.Len(t, data.Users, 2)
	assert.Equal(t, "staff", data.Users[0].Role)
	require.Len(t, data.Tools, 2)
	assert.Equal(t, int32(12), data.Tools[0].MaintenanceIntervalMonths)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	data, err := Load(writeSeedFile(t))
	require.NoError(t, err)

	categories := new(MockCategoryService)
	users := new(MockUserService)
	tools := new(MockToolService)

	categories.On("ListCategories", ctx).Return([]domain.Category{{ID: 1, Name: "Power Tools"}}, nil)
	categories.On("CreateCategory", ctx, "Garden").Return(&domain.Category{ID: 2, Name: "Garden"}, nil).Once()

	users.On("CreateUser", ctx, mock.MatchedBy(func(u *domain.User) bool { return u.Email == "desk@example.com" }), "change-me-now").
		Return(&domain.ConflictError{Entity: "user", Detail: "duplicate email"}).Once()
	users.On("CreateUser", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "ada@example.com" && u.MembershipExpiry != nil && u.MembershipExpiry.Equal(domain.NewDate(2026, time.December, 31))
	}), "").Return(nil).Once()

	tools.On("ListTools", ctx, domain.ToolFilter{CategoryID: 1, Page: 1, PageSize: 200}).
		Return([]domain.ToolMaintenanceView{{Tool: domain.Tool{ID: 4, Title: "cordless drill"}}}, int32(1), nil).Once()
	tools.On("ListTools", ctx, domain.ToolFilter{CategoryID: 2, Page: 1, PageSize: 200}).
		Return([]domain.ToolMaintenanceView{}, int32(0), nil).Once()
	tools.On("AddTool", ctx, mock.MatchedBy(func(tool *domain.Tool) bool {
		return tool.Title == "Lawn Mower" && tool.CategoryID == 2 && tool.MaintenanceIntervalMonths == nil
	})).Return(nil).Once()

	res, err := NewSeeder(categories, users, tools).Run(ctx, data)

	require.NoError(t, err)
	assert.Equal(t, Result{CategoriesCreated: 1, UsersCreated: 1, UsersSkipped: 1, ToolsCreated: 1, ToolsSkipped: 1}, res)
	categories.AssertExpectations(t)
	users.AssertExpectations(t)
	tools.AssertExpectations(t)
}

func TestSeeder_Run_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid date", func(t *testing.T) {
		categories := new(MockCategoryService)
		categories.On("ListCategories", ctx).Return([]domain.Category{}, nil)
		data := &Data{Users: []User{{Name: "Bo", Email: "bo@example.com", MembershipExpiry: "2026-02-30"}}}

		_, err := NewSeeder(categories, new(MockUserService), new(MockToolService)).Run(ctx, data)
		assert.ErrorContains(t, err, "membership_expiry")
	})

	t.Run("Tool without category", func(t *testing.T) {
		categories := new(MockCategoryService)
		categories.On("ListCategories", ctx).Return([]domain.Category{}, nil)
		data := &Data{Tools: []Tool{{Title: "Ladder"}}}

		_, err := NewSeeder(categories, new(MockUserService), new(MockToolService)).Run(ctx, data)
		assert.ErrorContains(t, err, "category is required")
	})

	t.Run("Validation failure stops the run", func(t *testing.T) {
		categories := new(MockCategoryService)
		categories.On("ListCategories", ctx).Return([]domain.Category{}, nil)
		users := new(MockUserService)
		users.On("CreateUser", ctx, mock.Anything, "").Return(domain.NewValidationError("email", "is required"))
		data := &Data{Users: []User{{Name: "No Email"}}}

		_, err := NewSeeder(categories, users, new(MockToolService)).Run(ctx, data)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
