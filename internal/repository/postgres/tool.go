package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
)

type toolRepository struct {
	db DBTX
}

func NewToolRepository(db DBTX) repository.ToolRepository {
	return &toolRepository{db: db}
}

const toolColumns = `id, title, category_id, weekly_price_cents, purchase_price_cents, purchase_date, status,
	last_maintenance_date, maintenance_interval_months, maintenance_importance, created_on`

func scanTool(row rowScanner) (*domain.Tool, error) {
	t := &domain.Tool{}
	err := row.Scan(&t.ID, &t.Title, &t.CategoryID, &t.WeeklyPriceCents, &t.PurchasePriceCents, &t.PurchaseDate, &t.Status,
		&t.LastMaintenanceDate, &t.MaintenanceIntervalMonths, &t.MaintenanceImportance, &t.CreatedOn)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *toolRepository) Create(ctx context.Context, t *domain.Tool) error {
	logger.EnterMethod("toolRepository.Create", "title", t.Title)

	query := `INSERT INTO tools (title, category_id, weekly_price_cents, purchase_price_cents, purchase_date, status,
	              last_maintenance_date, maintenance_interval_months, maintenance_importance, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	t.CreatedOn = time.Now()
	err := r.db.QueryRowContext(ctx, query, t.Title, t.CategoryID, t.WeeklyPriceCents, t.PurchasePriceCents, t.PurchaseDate, t.Status,
		t.LastMaintenanceDate, t.MaintenanceIntervalMonths, t.MaintenanceImportance, t.CreatedOn).Scan(&t.ID)
	if err != nil {
		logger.ExitMethodWithError("toolRepository.Create", err, "title", t.Title)
		return translateError(err, "tool", 0)
	}

	logger.ExitMethod("toolRepository.Create", "toolID", t.ID)
	return nil
}

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	t, err := scanTool(r.db.QueryRowContext(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err, "tool", id)
	}
	return t, nil
}

func (r *toolRepository) Update(ctx context.Context, t *domain.Tool) error {
	query := `UPDATE tools SET title=$1, category_id=$2, weekly_price_cents=$3, purchase_price_cents=$4, purchase_date=$5,
	              last_maintenance_date=$6, maintenance_interval_months=$7, maintenance_importance=$8
	          WHERE id=$9`
	res, err := r.db.ExecContext(ctx, query, t.Title, t.CategoryID, t.WeeklyPriceCents, t.PurchasePriceCents, t.PurchaseDate,
		t.LastMaintenanceDate, t.MaintenanceIntervalMonths, t.MaintenanceImportance, t.ID)
	if err != nil {
		return translateError(err, "tool", t.ID)
	}
	return notFoundIfNone(res, "tool", t.ID)
}

func (r *toolRepository) List(ctx context.Context, filter domain.ToolFilter) ([]domain.Tool, int32, error) {
	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CategoryID > 0 {
		args = append(args, filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM tools"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit, offset := pagination(filter.Page, filter.PageSize)
	query := `SELECT ` + toolColumns + ` FROM tools` + where +
		fmt.Sprintf(" ORDER BY title, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	tools, err := r.queryTools(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return tools, count, nil
}

func (r *toolRepository) ListWithMaintenanceSchedule(ctx context.Context) ([]domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools
	          WHERE last_maintenance_date IS NOT NULL AND maintenance_interval_months IS NOT NULL
	          ORDER BY id`
	return r.queryTools(ctx, query)
}

func (r *toolRepository) queryTools(ctx context.Context, query string, args ...any) ([]domain.Tool, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []domain.Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, *t)
	}
	return tools, rows.Err()
}

func (r *toolRepository) UpdateStatus(ctx context.Context, id int32, expected, next domain.ToolStatus) error {
	query := `UPDATE tools SET status=$1 WHERE id=$2 AND status=$3`
	logger.DatabaseCall("UpdateToolStatus", query, "toolID", id, "from", expected, "to", next)

	res, err := r.db.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		logger.DatabaseResult("UpdateToolStatus", 0, err, "toolID", id)
		return err
	}
	return requireOneRow(res, "tool", id, fmt.Sprintf("status is no longer %s", expected))
}

func (r *toolRepository) RecordMaintenance(ctx context.Context, id int32, serviced domain.Date) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tools SET last_maintenance_date=$1 WHERE id=$2`, serviced, id)
	if err != nil {
		return err
	}
	return notFoundIfNone(res, "tool", id)
}

func (r *toolRepository) CountByStatus(ctx context.Context) (map[domain.ToolStatus]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, count(*) FROM tools GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ToolStatus]int32)
	for rows.Next() {
		var status domain.ToolStatus
		var n int32
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
