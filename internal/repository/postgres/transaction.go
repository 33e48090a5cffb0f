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

type transactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, user_id, rental_id, amount_cents, type, status, method, txn_date, description, paid_at, created_on`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(&t.ID, &t.UserID, &t.RentalID, &t.AmountCents, &t.Type, &t.Status, &t.Method, &t.Date, &t.Description, &t.PaidAt, &t.CreatedOn)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	logger.EnterMethod("transactionRepository.Create", "userID", t.UserID, "type", t.Type, "amount", t.AmountCents)

	query := `INSERT INTO transactions (user_id, rental_id, amount_cents, type, status, method, txn_date, description, paid_at, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	t.CreatedOn = time.Now()
	err := r.db.QueryRowContext(ctx, query, t.UserID, t.RentalID, t.AmountCents, t.Type, t.Status, t.Method, t.Date, t.Description, t.PaidAt, t.CreatedOn).Scan(&t.ID)
	if err != nil {
		logger.ExitMethodWithError("transactionRepository.Create", err, "userID", t.UserID)
		return translateError(err, "transaction", 0)
	}

	logger.ExitMethod("transactionRepository.Create", "transactionID", t.ID)
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err, "transaction", id)
	}
	return t, nil
}

func (r *transactionRepository) GetByRentalID(ctx context.Context, rentalID int32) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE rental_id = $1 AND type = 'Rental' ORDER BY id LIMIT 1`
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, rentalID))
	if err != nil {
		return nil, translateError(err, "rental transaction", rentalID)
	}
	return t, nil
}

func (r *transactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int32, error) {
	var conds []string
	var args []any
	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM transactions"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit, offset := pagination(filter.Page, filter.PageSize)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		fmt.Sprintf(" ORDER BY txn_date DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return txns, count, nil
}

func (r *transactionRepository) MarkPaid(ctx context.Context, t *domain.Transaction) error {
	query := `UPDATE transactions SET status='paid', method=$1, paid_at=$2 WHERE id=$3 AND status='pending'`
	logger.DatabaseCall("MarkTransactionPaid", query, "transactionID", t.ID)

	paidAt := time.Now()
	if t.PaidAt != nil {
		paidAt = *t.PaidAt
	}
	res, err := r.db.ExecContext(ctx, query, t.Method, paidAt, t.ID)
	if err != nil {
		logger.DatabaseResult("MarkTransactionPaid", 0, err, "transactionID", t.ID)
		return err
	}
	if err := requireOneRow(res, "transaction", t.ID, "already paid"); err != nil {
		return err
	}
	t.Status = domain.TransactionStatusPaid
	t.PaidAt = &paidAt
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return notFoundIfNone(res, "transaction", id)
}
