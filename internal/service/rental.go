package service

import (
	"context"
	"errors"
	"fmt"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/utils"
)

type rentalService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	clock utils.Clock
}

func NewRentalService(repos repository.Repositories, uow repository.UnitOfWork, clock utils.Clock) RentalService {
	return &rentalService{
		repos: repos,
		uow:   uow,
		clock: clock,
	}
}

func (s *rentalService) CreateRental(ctx context.Context, req CreateRentalRequest) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CreateRental", "userID", req.UserID, "toolID", req.ToolID, "activate", req.Activate)

	if err := validateRentalRequest(req); err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err)
		return nil, err
	}

	user, err := s.repos.Users.GetByID(ctx, req.UserID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err, "userID", req.UserID)
		return nil, err
	}
	today := s.clock.Today()
	if user.Status != domain.UserStatusActive {
		return nil, domain.NewValidationError("user_id", fmt.Sprintf("member is %s", user.Status))
	}
	if utils.IsMembershipExpired(user.MembershipExpiry, today) {
		return nil, domain.NewValidationError("user_id", fmt.Sprintf("membership expired on %s", user.MembershipExpiry))
	}

	tool, err := s.repos.Tools.GetByID(ctx, req.ToolID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err, "toolID", req.ToolID)
		return nil, err
	}

	rental := &domain.Rental{
		UserID:    req.UserID,
		ToolID:    req.ToolID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    domain.RentalStatusPending,
	}
	if req.PriceOverrideCents != nil {
		rental.TotalPriceCents = *req.PriceOverrideCents
		rental.PriceOverridden = true
	} else {
		price, err := rentalPrice(&rental.StartDate, &rental.EndDate, tool.WeeklyPriceCents)
		if err != nil {
			logger.ExitMethodWithError("rentalService.CreateRental", err, "toolID", req.ToolID)
			return nil, err
		}
		rental.TotalPriceCents = price
	}

	if !req.Activate {
		if err := s.repos.Rentals.Create(ctx, rental); err != nil {
			logger.ExitMethodWithError("rentalService.CreateRental", err)
			return nil, err
		}
		logger.ExitMethod("rentalService.CreateRental", "rentalID", rental.ID, "status", rental.Status)
		return rental, nil
	}

	err = s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Rentals.Create(ctx, rental); err != nil {
			return err
		}
		current, err := repos.Tools.GetByID(ctx, tool.ID)
		if err != nil {
			return err
		}
		return s.activate(ctx, repos, rental, current, nil, today)
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err, "toolID", req.ToolID)
		return nil, err
	}

	logger.ExitMethod("rentalService.CreateRental", "rentalID", rental.ID, "status", rental.Status)
	return rental, nil
}

func validateRentalRequest(req CreateRentalRequest) error {
	fields := map[string]string{}
	if req.UserID <= 0 {
		fields["user_id"] = "is required"
	}
	if req.ToolID <= 0 {
		fields["tool_id"] = "is required"
	}
	if req.StartDate.IsZero() {
		fields["start_date"] = "is required"
	}
	if req.EndDate.IsZero() {
		fields["end_date"] = "is required"
	}
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate) {
		fields["end_date"] = "must not be before start_date"
	}
	if req.PriceOverrideCents != nil && *req.PriceOverrideCents < 0 {
		fields["total_price_cents"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (s *rentalService) QuoteRental(ctx context.Context, toolID int32, start, end domain.Date) (*utils.RentalCostBreakdown, error) {
	tool, err := s.repos.Tools.GetByID(ctx, toolID)
	if err != nil {
		return nil, err
	}
	breakdown := utils.CalculateRentalCostWithBreakdown(&start, &end, tool.WeeklyPriceCents)
	if breakdown.TotalCost > utils.MaxPriceCents {
		return nil, priceTooLarge(breakdown.TotalCost)
	}
	return &breakdown, nil
}

// rentalPrice is the computed price of a loan, refused when it cannot be stored.
func rentalPrice(start, end *domain.Date, weeklyPriceCents int32) (int32, error) {
	cost := utils.CalculateRentalCost(start, end, weeklyPriceCents)
	if cost > utils.MaxPriceCents {
		return 0, priceTooLarge(cost)
	}
	return int32(cost), nil
}

func priceTooLarge(cost int64) error {
	return domain.NewValidationError("end_date",
		fmt.Sprintf("rental price of %d cents exceeds the maximum of %d", cost, utils.MaxPriceCents))
}

func (s *rentalService) GetRental(ctx context.Context, id int32) (*domain.Rental, error) {
	return s.repos.Rentals.GetByID(ctx, id)
}

func (s *rentalService) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.NewValidationError("status", fmt.Sprintf("unknown rental status %q", filter.Status))
	}
	return s.repos.Rentals.List(ctx, filter)
}

func (s *rentalService) ActivateRental(ctx context.Context, id int32, priceOverrideCents *int32) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.ActivateRental", "rentalID", id)

	if priceOverrideCents != nil && *priceOverrideCents < 0 {
		return nil, domain.NewValidationError("total_price_cents", "must not be negative")
	}

	rental, err := s.repos.Rentals.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("rentalService.ActivateRental", err, "rentalID", id)
		return nil, err
	}

	today := s.clock.Today()
	err = s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		tool, err := repos.Tools.GetByID(ctx, rental.ToolID)
		if err != nil {
			return err
		}
		return s.activate(ctx, repos, rental, tool, priceOverrideCents, today)
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.ActivateRental", err, "rentalID", id)
		return nil, err
	}

	logger.ExitMethod("rentalService.ActivateRental", "rentalID", id, "priceCents", rental.TotalPriceCents)
	return rental, nil
}

// activate moves rental from pending to active and the tool from available to
// rented. Every eligibility check runs before the first write so a refused
// activation leaves both records untouched. rental is updated in place only on
// success.
func (s *rentalService) activate(ctx context.Context, repos repository.Repositories, rental *domain.Rental, tool *domain.Tool, priceOverrideCents *int32, today domain.Date) error {
	if !rental.Status.CanTransitionTo(domain.RentalStatusActive) {
		return &domain.InvalidTransitionError{Entity: "rental", From: string(rental.Status), To: string(domain.RentalStatusActive)}
	}
	if utils.BlocksRental(tool, today) {
		return &domain.InvalidTransitionError{
			Entity: "rental",
			From:   string(rental.Status),
			To:     string(domain.RentalStatusActive),
			Reason: fmt.Sprintf("tool %d is overdue for %s importance maintenance since %s", tool.ID, tool.MaintenanceImportance, utils.MaintenanceExpiration(tool)),
		}
	}
	switch tool.Status {
	case domain.ToolStatusAvailable:
	case domain.ToolStatusRented:
		return &domain.ConflictError{Entity: "tool", ID: tool.ID, Detail: "already rented"}
	default:
		return &domain.InvalidTransitionError{
			Entity: "rental",
			From:   string(rental.Status),
			To:     string(domain.RentalStatusActive),
			Reason: fmt.Sprintf("tool %d is %s", tool.ID, tool.Status),
		}
	}

	next := *rental
	next.Status = domain.RentalStatusActive
	switch {
	case priceOverrideCents != nil:
		next.TotalPriceCents = *priceOverrideCents
		next.PriceOverridden = true
	case !next.PriceOverridden:
		price, err := rentalPrice(&next.StartDate, &next.EndDate, tool.WeeklyPriceCents)
		if err != nil {
			return err
		}
		next.TotalPriceCents = price
	}

	if err := repos.Rentals.UpdateStatus(ctx, &next, rental.Status); err != nil {
		return err
	}
	if err := repos.Tools.UpdateStatus(ctx, tool.ID, domain.ToolStatusAvailable, domain.ToolStatusRented); err != nil {
		return err
	}

	*rental = next
	return nil
}

func (s *rentalService) RejectRental(ctx context.Context, id int32) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.RejectRental", "rentalID", id)

	rental, err := s.repos.Rentals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rental.Status.CanTransitionTo(domain.RentalStatusRejected) {
		err := &domain.InvalidTransitionError{Entity: "rental", From: string(rental.Status), To: string(domain.RentalStatusRejected)}
		logger.ExitMethodWithError("rentalService.RejectRental", err, "rentalID", id)
		return nil, err
	}

	next := *rental
	next.Status = domain.RentalStatusRejected
	if err := s.repos.Rentals.UpdateStatus(ctx, &next, rental.Status); err != nil {
		logger.ExitMethodWithError("rentalService.RejectRental", err, "rentalID", id)
		return nil, err
	}

	logger.ExitMethod("rentalService.RejectRental", "rentalID", id)
	return &next, nil
}

func (s *rentalService) ReturnRental(ctx context.Context, id int32, comment string) (*domain.Rental, *domain.Transaction, error) {
	logger.EnterMethod("rentalService.ReturnRental", "rentalID", id)

	rental, err := s.repos.Rentals.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !rental.Status.CanTransitionTo(domain.RentalStatusCompleted) {
		err := &domain.InvalidTransitionError{Entity: "rental", From: string(rental.Status), To: string(domain.RentalStatusCompleted)}
		logger.ExitMethodWithError("rentalService.ReturnRental", err, "rentalID", id)
		return nil, nil, err
	}

	today := s.clock.Today()
	next := *rental
	next.Status = domain.RentalStatusCompleted
	next.ActualReturnDate = &today
	next.ReturnComment = comment

	var charge *domain.Transaction
	err = s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Rentals.UpdateStatus(ctx, &next, rental.Status); err != nil {
			return err
		}

		tool, err := repos.Tools.GetByID(ctx, rental.ToolID)
		if err != nil {
			return err
		}
		if tool.Status == domain.ToolStatusRented {
			target := domain.ToolStatusAvailable
			if utils.BlocksRental(tool, today) {
				target = domain.ToolStatusMaintenance
			}
			if err := repos.Tools.UpdateStatus(ctx, tool.ID, domain.ToolStatusRented, target); err != nil {
				return err
			}
		} else {
			logger.Warn("Returned tool was not marked rented", "rentalID", id, "toolID", tool.ID, "toolStatus", tool.Status)
		}

		charge, err = repos.Transactions.GetByRentalID(ctx, rental.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			rentalID := rental.ID
			charge = &domain.Transaction{
				UserID:      rental.UserID,
				RentalID:    &rentalID,
				AmountCents: next.TotalPriceCents,
				Type:        domain.TransactionTypeRental,
				Status:      domain.TransactionStatusPending,
				Date:        today,
				Description: fmt.Sprintf("Rental of %s from %s to %s", tool.Title, rental.StartDate, rental.EndDate),
			}
			if err := repos.Transactions.Create(ctx, charge); err != nil {
				return err
			}
		case err != nil:
			return err
		}

		_, err = repos.Users.RecomputeDebt(ctx, rental.UserID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.ReturnRental", err, "rentalID", id)
		return nil, nil, err
	}

	logger.ExitMethod("rentalService.ReturnRental", "rentalID", id, "returnedLate", next.ReturnedLate())
	return &next, charge, nil
}

func (s *rentalService) MarkLate(ctx context.Context, id int32) (*domain.Rental, error) {
	rental, err := s.repos.Rentals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rental.Status.CanTransitionTo(domain.RentalStatusLate) {
		return nil, &domain.InvalidTransitionError{Entity: "rental", From: string(rental.Status), To: string(domain.RentalStatusLate)}
	}
	if !utils.IsRentalLate(rental, s.clock.Today()) {
		return nil, &domain.InvalidTransitionError{
			Entity: "rental",
			From:   string(rental.Status),
			To:     string(domain.RentalStatusLate),
			Reason: fmt.Sprintf("rental is due back on %s", rental.EndDate),
		}
	}

	next := *rental
	next.Status = domain.RentalStatusLate
	if err := s.repos.Rentals.UpdateStatus(ctx, &next, rental.Status); err != nil {
		return nil, err
	}
	return &next, nil
}

// ReconcileLateRentals promotes every active rental that is past its end date
// to late and returns the promoted rentals. Rentals changed concurrently, for
// example returned while the job runs, are skipped.
func (s *rentalService) ReconcileLateRentals(ctx context.Context) ([]domain.Rental, error) {
	logger.EnterMethod("rentalService.ReconcileLateRentals")

	today := s.clock.Today()
	candidates, err := s.repos.Rentals.ListOpenEndingBefore(ctx, today)
	if err != nil {
		logger.ExitMethodWithError("rentalService.ReconcileLateRentals", err)
		return nil, err
	}

	var promoted []domain.Rental
	for i := range candidates {
		rental := candidates[i]
		if rental.Status != domain.RentalStatusActive || !utils.IsRentalLate(&rental, today) {
			continue
		}
		rental.Status = domain.RentalStatusLate
		if err := s.repos.Rentals.UpdateStatus(ctx, &rental, domain.RentalStatusActive); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				logger.Info("Rental changed during late reconciliation", "rentalID", rental.ID)
				continue
			}
			logger.ExitMethodWithError("rentalService.ReconcileLateRentals", err, "rentalID", rental.ID)
			return promoted, err
		}
		promoted = append(promoted, rental)
	}

	logger.ExitMethod("rentalService.ReconcileLateRentals", "candidates", len(candidates), "promoted", len(promoted))
	return promoted, nil
}

func (s *rentalService) ListLateRentals(ctx context.Context) ([]domain.Rental, error) {
	today := s.clock.Today()
	candidates, err := s.repos.Rentals.ListOpenEndingBefore(ctx, today)
	if err != nil {
		return nil, err
	}

	late := make([]domain.Rental, 0, len(candidates))
	for i := range candidates {
		if utils.IsRentalLate(&candidates[i], today) {
			late = append(late, candidates[i])
		}
	}
	return late, nil
}
