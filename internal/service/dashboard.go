package service

import (
	"context"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/utils"
)

type dashboardService struct {
	repos     repository.Repositories
	rentalSvc RentalService
	userSvc   UserService
	clock     utils.Clock
}

func NewDashboardService(repos repository.Repositories, rentalSvc RentalService, userSvc UserService, clock utils.Clock) DashboardService {
	return &dashboardService{
		repos:     repos,
		rentalSvc: rentalSvc,
		userSvc:   userSvc,
		clock:     clock,
	}
}

func (s *dashboardService) GetSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	rentalCounts, err := s.repos.Rentals.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	toolCounts, err := s.repos.Tools.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	debt, err := s.repos.Users.TotalOutstandingDebt(ctx)
	if err != nil {
		return nil, err
	}
	late, err := s.rentalSvc.ListLateRentals(ctx)
	if err != nil {
		return nil, err
	}
	expiring, err := s.userSvc.ListExpiringMemberships(ctx)
	if err != nil {
		return nil, err
	}
	scheduled, err := s.repos.Tools.ListWithMaintenanceSchedule(ctx)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	var blocking int32
	for i := range scheduled {
		if scheduled[i].Status != domain.ToolStatusMaintenance && utils.BlocksRental(&scheduled[i], today) {
			blocking++
		}
	}

	return &domain.DashboardSummary{
		RentalsByStatus:          rentalCounts,
		ToolsByStatus:            toolCounts,
		OutstandingDebtCents:     debt,
		LateRentals:              int32(len(late)),
		ExpiringMemberships:      int32(len(expiring)),
		MaintenanceBlockingTools: blocking,
	}, nil
}
