package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/utils"
)

type toolService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	clock utils.Clock
}

func NewToolService(repos repository.Repositories, uow repository.UnitOfWork, clock utils.Clock) ToolService {
	return &toolService{
		repos: repos,
		uow:   uow,
		clock: clock,
	}
}

func (s *toolService) AddTool(ctx context.Context, tool *domain.Tool) error {
	logger.EnterMethod("toolService.AddTool", "title", tool.Title)

	if tool.Status == "" {
		tool.Status = domain.ToolStatusAvailable
	}
	if tool.MaintenanceImportance == "" {
		tool.MaintenanceImportance = domain.MaintenanceImportanceLow
	}
	if err := s.validateTool(ctx, tool); err != nil {
		logger.ExitMethodWithError("toolService.AddTool", err)
		return err
	}
	if tool.Status == domain.ToolStatusRented {
		return domain.NewValidationError("status", "a new tool cannot start out rented")
	}

	if err := s.repos.Tools.Create(ctx, tool); err != nil {
		logger.ExitMethodWithError("toolService.AddTool", err)
		return err
	}

	logger.ExitMethod("toolService.AddTool", "toolID", tool.ID)
	return nil
}

func (s *toolService) validateTool(ctx context.Context, tool *domain.Tool) error {
	fields := map[string]string{}
	tool.Title = strings.TrimSpace(tool.Title)
	if tool.Title == "" {
		fields["title"] = "is required"
	}
	if tool.WeeklyPriceCents < 0 {
		fields["weekly_price_cents"] = "must not be negative"
	}
	if tool.PurchasePriceCents < 0 {
		fields["purchase_price_cents"] = "must not be negative"
	}
	if !tool.Status.Valid() {
		fields["status"] = fmt.Sprintf("unknown tool status %q", tool.Status)
	}
	if !tool.MaintenanceImportance.Valid() {
		fields["maintenance_importance"] = fmt.Sprintf("unknown importance %q", tool.MaintenanceImportance)
	}
	if tool.MaintenanceIntervalMonths != nil && *tool.MaintenanceIntervalMonths <= 0 {
		fields["maintenance_interval_months"] = "must be positive"
	}
	if tool.LastMaintenanceDate != nil && tool.LastMaintenanceDate.After(s.clock.Today()) {
		fields["last_maintenance_date"] = "must not be in the future"
	}
	if tool.CategoryID <= 0 {
		fields["category_id"] = "is required"
	} else if _, err := s.repos.Categories.GetByID(ctx, tool.CategoryID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		fields["category_id"] = fmt.Sprintf("category %d does not exist", tool.CategoryID)
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (s *toolService) GetTool(ctx context.Context, id int32) (*domain.ToolMaintenanceView, error) {
	tool, err := s.repos.Tools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := utils.BuildMaintenanceView(tool, s.clock.Today())
	return &view, nil
}

// UpdateTool rewrites a tool's descriptive and maintenance fields. Status is
// kept as stored; use SetToolStatus to change it.
func (s *toolService) UpdateTool(ctx context.Context, tool *domain.Tool) error {
	existing, err := s.repos.Tools.GetByID(ctx, tool.ID)
	if err != nil {
		return err
	}
	tool.Status = existing.Status
	tool.CreatedOn = existing.CreatedOn
	if tool.MaintenanceImportance == "" {
		tool.MaintenanceImportance = existing.MaintenanceImportance
	}
	if err := s.validateTool(ctx, tool); err != nil {
		return err
	}
	return s.repos.Tools.Update(ctx, tool)
}

// SetToolStatus lets staff withdraw a tool for service or retire it. The rented
// status is owned by the rental lifecycle and cannot be set or cleared here.
func (s *toolService) SetToolStatus(ctx context.Context, id int32, status domain.ToolStatus) (*domain.ToolMaintenanceView, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown tool status %q", status))
	}

	tool, err := s.repos.Tools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tool.Status == domain.ToolStatusRented || status == domain.ToolStatusRented {
		return nil, &domain.InvalidTransitionError{
			Entity: "tool",
			From:   string(tool.Status),
			To:     string(status),
			Reason: "rented status follows the rental lifecycle",
		}
	}

	if tool.Status != status {
		if err := s.repos.Tools.UpdateStatus(ctx, id, tool.Status, status); err != nil {
			return nil, err
		}
		logger.Info("Tool status changed", "toolID", id, "from", tool.Status, "to", status)
		tool.Status = status
	}

	view := utils.BuildMaintenanceView(tool, s.clock.Today())
	return &view, nil
}

func (s *toolService) ListTools(ctx context.Context, filter domain.ToolFilter) ([]domain.ToolMaintenanceView, int32, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.NewValidationError("status", fmt.Sprintf("unknown tool status %q", filter.Status))
	}
	tools, count, err := s.repos.Tools.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	today := s.clock.Today()
	views := make([]domain.ToolMaintenanceView, 0, len(tools))
	for i := range tools {
		views = append(views, utils.BuildMaintenanceView(&tools[i], today))
	}
	return views, count, nil
}

// RecordMaintenance stores a completed service. A tool that was withdrawn for
// maintenance becomes available again in the same transaction.
func (s *toolService) RecordMaintenance(ctx context.Context, id int32, serviced *domain.Date) (*domain.ToolMaintenanceView, error) {
	logger.EnterMethod("toolService.RecordMaintenance", "toolID", id)

	today := s.clock.Today()
	when := today
	if serviced != nil && !serviced.IsZero() {
		if serviced.After(today) {
			return nil, domain.NewValidationError("serviced_on", "must not be in the future")
		}
		when = *serviced
	}

	var tool *domain.Tool
	err := s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		tool, err = repos.Tools.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Tools.RecordMaintenance(ctx, id, when); err != nil {
			return err
		}
		tool.LastMaintenanceDate = &when
		if tool.Status == domain.ToolStatusMaintenance {
			if err := repos.Tools.UpdateStatus(ctx, id, domain.ToolStatusMaintenance, domain.ToolStatusAvailable); err != nil {
				return err
			}
			tool.Status = domain.ToolStatusAvailable
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("toolService.RecordMaintenance", err, "toolID", id)
		return nil, err
	}

	view := utils.BuildMaintenanceView(tool, today)
	logger.ExitMethod("toolService.RecordMaintenance", "toolID", id, "maintenanceStatus", view.MaintenanceStatus)
	return &view, nil
}

// ListMaintenanceDue returns scheduled tools whose maintenance is expired or due
// soon, most urgent first. Tools already withdrawn for service are left out.
func (s *toolService) ListMaintenanceDue(ctx context.Context) ([]domain.ToolMaintenanceView, error) {
	tools, err := s.repos.Tools.ListWithMaintenanceSchedule(ctx)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	expired := []domain.ToolMaintenanceView{}
	var dueSoon []domain.ToolMaintenanceView
	for i := range tools {
		view := utils.BuildMaintenanceView(&tools[i], today)
		switch view.MaintenanceStatus {
		case domain.MaintenanceStatusExpired:
			expired = append(expired, view)
		case domain.MaintenanceStatusDueSoon:
			dueSoon = append(dueSoon, view)
		}
	}
	return append(expired, dueSoon...), nil
}
