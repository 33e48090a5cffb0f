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

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, user_id, tool_id, start_date, end_date, actual_return_date, status, total_price_cents,
	price_overridden, return_comment, created_on, updated_on`

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(&rt.ID, &rt.UserID, &rt.ToolID, &rt.StartDate, &rt.EndDate, &rt.ActualReturnDate, &rt.Status,
		&rt.TotalPriceCents, &rt.PriceOverridden, &rt.ReturnComment, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.Create", "userID", rt.UserID, "toolID", rt.ToolID)

	query := `INSERT INTO rentals (user_id, tool_id, start_date, end_date, status, total_price_cents, price_overridden, return_comment, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, '', $8, $9) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, rt.UserID, rt.ToolID, rt.StartDate, rt.EndDate, rt.Status, rt.TotalPriceCents, rt.PriceOverridden, now, now).Scan(&rt.ID)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Create", err, "toolID", rt.ToolID)
		return translateError(err, "rental", 0)
	}
	rt.CreatedOn, rt.UpdatedOn = now, now

	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	rt, err := scanRental(r.db.QueryRowContext(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err, "rental", id)
	}
	return rt, nil
}

func (r *rentalRepository) List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.ToolID > 0 {
		args = append(args, filter.ToolID)
		conds = append(conds, fmt.Sprintf("tool_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM rentals"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit, offset := pagination(filter.Page, filter.PageSize)
	query := `SELECT ` + rentalColumns + ` FROM rentals` + where +
		fmt.Sprintf(" ORDER BY created_on DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rentals, err := r.queryRentals(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return rentals, count, nil
}

func (r *rentalRepository) ListOpenEndingBefore(ctx context.Context, before domain.Date) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE status IN ('active', 'late') AND actual_return_date IS NULL AND end_date < $1
	          ORDER BY end_date, id`
	return r.queryRentals(ctx, query, before)
}

func (r *rentalRepository) queryRentals(ctx context.Context, query string, args ...any) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, rt *domain.Rental, expected domain.RentalStatus) error {
	query := `UPDATE rentals
	          SET status=$1, total_price_cents=$2, price_overridden=$3, actual_return_date=$4, return_comment=$5, updated_on=$6
	          WHERE id=$7 AND status=$8`
	logger.DatabaseCall("UpdateRentalStatus", query, "rentalID", rt.ID, "from", expected, "to", rt.Status)

	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, rt.Status, rt.TotalPriceCents, rt.PriceOverridden, rt.ActualReturnDate, rt.ReturnComment, now, rt.ID, expected)
	if err != nil {
		logger.DatabaseResult("UpdateRentalStatus", 0, err, "rentalID", rt.ID)
		return translateError(err, "rental", rt.ID)
	}
	if err := requireOneRow(res, "rental", rt.ID, fmt.Sprintf("status is no longer %s", expected)); err != nil {
		return err
	}
	rt.UpdatedOn = now
	return nil
}

func (r *rentalRepository) CountByStatus(ctx context.Context) (map[domain.RentalStatus]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, count(*) FROM rentals GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RentalStatus]int32)
	for rows.Next() {
		var status domain.RentalStatus
		var n int32
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
