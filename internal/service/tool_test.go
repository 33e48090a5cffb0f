package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/utils"
)

func newToolFixture(t *testing.T) (*fakeDB, ToolService, *domain.Category) {
	t.Helper()
	db := newFakeDB()
	svc := NewToolService(db.Repositories(), db, utils.NewFixedClock(testToday))
	return db, svc, db.addCategory("Garden")
}

func TestToolService_AddTool(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults", func(t *testing.T) {
		_, svc, category := newToolFixture(t)
		tool := &domain.Tool{Title: "Hedge trimmer", CategoryID: category.ID, WeeklyPriceCents: 1200}

		require.NoError(t, svc.AddTool(ctx, tool))
		assert.NotZero(t, tool.ID)
		assert.Equal(t, domain.ToolStatusAvailable, tool.Status)
		assert.Equal(t, domain.MaintenanceImportanceLow, tool.MaintenanceImportance)
	})

	t.Run("Unknown category", func(t *testing.T) {
		_, svc, _ := newToolFixture(t)
		err := svc.AddTool(ctx, &domain.Tool{Title: "Rake", CategoryID: 77})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "category_id")
	})

	t.Run("Invalid fields", func(t *testing.T) {
		_, svc, category := newToolFixture(t)
		err := svc.AddTool(ctx, &domain.Tool{
			Title:                     " ",
			CategoryID:                category.ID,
			WeeklyPriceCents:          -5,
			MaintenanceIntervalMonths: int32Ptr(0),
			LastMaintenanceDate:       datePtr(2026, time.February, 1),
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "title")
		assert.Contains(t, verr.Fields, "weekly_price_cents")
		assert.Contains(t, verr.Fields, "maintenance_interval_months")
		assert.Contains(t, verr.Fields, "last_maintenance_date")
	})

	t.Run("Cannot start rented", func(t *testing.T) {
		_, svc, category := newToolFixture(t)
		err := svc.AddTool(ctx, &domain.Tool{Title: "Saw", CategoryID: category.ID, Status: domain.ToolStatusRented})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestToolService_GetTool(t *testing.T) {
	ctx := context.Background()
	db, svc, category := newToolFixture(t)

	t.Run("Expired after thirteen months on a yearly schedule", func(t *testing.T) {
		tool := db.addTool(domain.Tool{
			Title:                     "Chainsaw",
			CategoryID:                category.ID,
			LastMaintenanceDate:       datePtr(2024, time.December, 10),
			MaintenanceIntervalMonths: int32Ptr(12),
			MaintenanceImportance:     domain.MaintenanceImportanceHigh,
		})

		view, err := svc.GetTool(ctx, tool.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MaintenanceStatusExpired, view.MaintenanceStatus)
		assert.True(t, view.BlocksRental)
		require.NotNil(t, view.MaintenanceDueOn)
		assert.Equal(t, "2025-12-10", view.MaintenanceDueOn.String())
	})

	t.Run("Compliant on a fourteen month schedule", func(t *testing.T) {
		tool := db.addTool(domain.Tool{
			Title:                     "Pole saw",
			CategoryID:                category.ID,
			LastMaintenanceDate:       datePtr(2024, time.December, 10),
			MaintenanceIntervalMonths: int32Ptr(14),
			MaintenanceImportance:     domain.MaintenanceImportanceHigh,
		})

		view, err := svc.GetTool(ctx, tool.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MaintenanceStatusCompliant, view.MaintenanceStatus)
		assert.False(t, view.BlocksRental)
	})

	t.Run("Missing tool", func(t *testing.T) {
		_, err := svc.GetTool(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestToolService_UpdateTool(t *testing.T) {
	ctx := context.Background()
	db, svc, category := newToolFixture(t)
	tool := db.addTool(domain.Tool{Title: "Ladder", CategoryID: category.ID, Status: domain.ToolStatusRented})

	update := &domain.Tool{ID: tool.ID, Title: "Extension ladder", CategoryID: category.ID, WeeklyPriceCents: 900, Status: domain.ToolStatusAvailable}
	require.NoError(t, svc.UpdateTool(ctx, update))

	stored := db.tool(tool.ID)
	assert.Equal(t, "Extension ladder", stored.Title)
	assert.Equal(t, domain.ToolStatusRented, stored.Status)
}

func TestToolService_SetToolStatus(t *testing.T) {
	ctx := context.Background()
	db, svc, category := newToolFixture(t)

	t.Run("Withdraw for maintenance", func(t *testing.T) {
		tool := db.addTool(domain.Tool{Title: "Mower", CategoryID: category.ID})
		view, err := svc.SetToolStatus(ctx, tool.ID, domain.ToolStatusMaintenance)
		require.NoError(t, err)
		assert.Equal(t, domain.MaintenanceStatusInService, view.MaintenanceStatus)
		assert.Equal(t, domain.ToolStatusMaintenance, db.tool(tool.ID).Status)
	})

	t.Run("Rented is owned by rentals", func(t *testing.T) {
		tool := db.addTool(domain.Tool{Title: "Tiller", CategoryID: category.ID})
		_, err := svc.SetToolStatus(ctx, tool.ID, domain.ToolStatusRented)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		rented := db.addTool(domain.Tool{Title: "Edger", CategoryID: category.ID, Status: domain.ToolStatusRented})
		_, err = svc.SetToolStatus(ctx, rented.ID, domain.ToolStatusAvailable)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestToolService_RecordMaintenance(t *testing.T) {
	ctx := context.Background()
	db, svc, category := newToolFixture(t)

	t.Run("Returns tool to service", func(t *testing.T) {
		tool := db.addTool(domain.Tool{
			Title:                     "Chainsaw",
			CategoryID:                category.ID,
			Status:                    domain.ToolStatusMaintenance,
			LastMaintenanceDate:       datePtr(2024, time.June, 1),
			MaintenanceIntervalMonths: int32Ptr(6),
			MaintenanceImportance:     domain.MaintenanceImportanceHigh,
		})

		view, err := svc.RecordMaintenance(ctx, tool.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.ToolStatusAvailable, view.Tool.Status)
		assert.Equal(t, domain.MaintenanceStatusCompliant, view.MaintenanceStatus)
		stored := db.tool(tool.ID)
		require.NotNil(t, stored.LastMaintenanceDate)
		assert.True(t, stored.LastMaintenanceDate.Equal(testToday))
		assert.Equal(t, domain.ToolStatusAvailable, stored.Status)
	})

	t.Run("Rented tool keeps its status", func(t *testing.T) {
		tool := db.addTool(domain.Tool{Title: "Auger", CategoryID: category.ID, Status: domain.ToolStatusRented})
		view, err := svc.RecordMaintenance(ctx, tool.ID, datePtr(2026, time.January, 5))
		require.NoError(t, err)
		assert.Equal(t, domain.ToolStatusRented, view.Tool.Status)
	})

	t.Run("Future date", func(t *testing.T) {
		tool := db.addTool(domain.Tool{Title: "Blower", CategoryID: category.ID})
		_, err := svc.RecordMaintenance(ctx, tool.ID, datePtr(2026, time.January, 11))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestToolService_ListMaintenanceDue(t *testing.T) {
	ctx := context.Background()
	db, svc, category := newToolFixture(t)

	dueSoon := db.addTool(domain.Tool{Title: "Due soon", CategoryID: category.ID, LastMaintenanceDate: datePtr(2025, time.January, 20), MaintenanceIntervalMonths: int32Ptr(12)})
	expired := db.addTool(domain.Tool{Title: "Expired", CategoryID: category.ID, LastMaintenanceDate: datePtr(2024, time.January, 1), MaintenanceIntervalMonths: int32Ptr(12)})
	db.addTool(domain.Tool{Title: "Fine", CategoryID: category.ID, LastMaintenanceDate: datePtr(2025, time.December, 1), MaintenanceIntervalMonths: int32Ptr(12)})
	db.addTool(domain.Tool{Title: "Unscheduled", CategoryID: category.ID})

	due, err := svc.ListMaintenanceDue(ctx)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, expired.ID, due[0].Tool.ID)
	assert.Equal(t, domain.MaintenanceStatusExpired, due[0].MaintenanceStatus)
	assert.Equal(t, dueSoon.ID, due[1].Tool.ID)
	assert.Equal(t, domain.MaintenanceStatusDueSoon, due[1].MaintenanceStatus)
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	svc := NewCategoryService(db.Repositories().Categories)

	created, err := svc.CreateCategory(ctx, "  Woodworking ")
	require.NoError(t, err)
	assert.Equal(t, "Woodworking", created.Name)

	_, err = svc.CreateCategory(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	renamed, err := svc.UpdateCategory(ctx, created.ID, "Wood")
	require.NoError(t, err)
	assert.Equal(t, "Wood", renamed.Name)

	all, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Wood", all[0].Name)

	_, err = svc.GetCategory(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDashboardService_GetSummary(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	clock := utils.NewFixedClock(testToday)
	repos := db.Repositories()
	rentalSvc := NewRentalService(repos, db, clock)
	userSvc := NewUserService(repos, db, clock)
	svc := NewDashboardService(repos, rentalSvc, userSvc, clock)

	category := db.addCategory("Misc")
	member := db.addUser(domain.User{Name: "A", Email: "a@example.com", BadgeNumber: "1", MembershipExpiry: datePtr(2026, time.January, 20), TotalDebtCents: 1200})
	db.addUser(domain.User{Name: "B", Email: "b@example.com", BadgeNumber: "2", TotalDebtCents: 300})
	rented := db.addTool(domain.Tool{Title: "Drill", CategoryID: category.ID, Status: domain.ToolStatusRented})
	db.addTool(domain.Tool{Title: "Sander", CategoryID: category.ID, LastMaintenanceDate: datePtr(2024, time.January, 1), MaintenanceIntervalMonths: int32Ptr(12), MaintenanceImportance: domain.MaintenanceImportanceHigh})
	db.addTool(domain.Tool{Title: "Grinder", CategoryID: category.ID, Status: domain.ToolStatusMaintenance, LastMaintenanceDate: datePtr(2024, time.January, 1), MaintenanceIntervalMonths: int32Ptr(12), MaintenanceImportance: domain.MaintenanceImportanceHigh})
	db.addRental(domain.Rental{UserID: member.ID, ToolID: rented.ID, StartDate: date(2026, time.January, 1), EndDate: date(2026, time.January, 8), Status: domain.RentalStatusActive})
	db.addRental(domain.Rental{UserID: member.ID, ToolID: rented.ID, StartDate: date(2026, time.January, 20), EndDate: date(2026, time.January, 27), Status: domain.RentalStatusPending})

	summary, err := svc.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), summary.RentalsByStatus[domain.RentalStatusActive])
	assert.Equal(t, int32(1), summary.RentalsByStatus[domain.RentalStatusPending])
	assert.Equal(t, int32(1), summary.ToolsByStatus[domain.ToolStatusRented])
	assert.Equal(t, int32(1), summary.ToolsByStatus[domain.ToolStatusMaintenance])
	assert.Equal(t, int64(1500), summary.OutstandingDebtCents)
	assert.Equal(t, int32(1), summary.LateRentals)
	assert.Equal(t, int32(1), summary.ExpiringMemberships)
	assert.Equal(t, int32(1), summary.MaintenanceBlockingTools)
}
