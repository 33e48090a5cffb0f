package postgres

import (
	"context"
	"fmt"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, badge_number, role, status, membership_expiry, total_debt_cents, password_hash, created_on, updated_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.BadgeNumber, &u.Role, &u.Status, &u.MembershipExpiry, &u.TotalDebtCents, &u.PasswordHash, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	logger.EnterMethod("userRepository.Create", "email", u.Email)

	query := `INSERT INTO users (name, email, badge_number, role, status, membership_expiry, total_debt_cents, password_hash, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, u.Name, u.Email, u.BadgeNumber, u.Role, u.Status, u.MembershipExpiry, u.PasswordHash, now, now).Scan(&u.ID)
	if err != nil {
		logger.ExitMethodWithError("userRepository.Create", err, "email", u.Email)
		return translateError(err, "user", 0)
	}
	u.TotalDebtCents = 0
	u.CreatedOn, u.UpdatedOn = now, now

	logger.ExitMethod("userRepository.Create", "userID", u.ID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "user", id)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, translateError(err, "user", 0)
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context, status domain.UserStatus, page, pageSize int32) ([]domain.User, int32, error) {
	where := ""
	args := []any{}
	if status != "" {
		where = " WHERE status = $1"
		args = append(args, status)
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM users"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit, offset := pagination(page, pageSize)
	query := `SELECT ` + userColumns + ` FROM users` + where +
		fmt.Sprintf(" ORDER BY name, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	users, err := r.queryUsers(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET name=$1, email=$2, badge_number=$3, role=$4, updated_on=$5 WHERE id=$6`
	res, err := r.db.ExecContext(ctx, query, u.Name, u.Email, u.BadgeNumber, u.Role, time.Now(), u.ID)
	if err != nil {
		return translateError(err, "user", u.ID)
	}
	return notFoundIfNone(res, "user", u.ID)
}

func (r *userRepository) UpdateStatus(ctx context.Context, id int32, status domain.UserStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET status=$1, updated_on=$2 WHERE id=$3`, status, time.Now(), id)
	if err != nil {
		return err
	}
	return notFoundIfNone(res, "user", id)
}

func (r *userRepository) UpdateMembershipExpiry(ctx context.Context, id int32, expiry domain.Date) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET membership_expiry=$1, updated_on=$2 WHERE id=$3`, expiry, time.Now(), id)
	if err != nil {
		return err
	}
	return notFoundIfNone(res, "user", id)
}

func (r *userRepository) ListMembershipsExpiringBefore(ctx context.Context, before domain.Date) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE status = 'active' AND membership_expiry IS NOT NULL AND membership_expiry < $1
	          ORDER BY membership_expiry, id`
	return r.queryUsers(ctx, query, before)
}

func (r *userRepository) RecomputeDebt(ctx context.Context, userID int32) (int32, error) {
	query := `UPDATE users SET total_debt_cents = (
	              SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
	              WHERE user_id = $1 AND status = 'pending'
	          ), updated_on = $2
	          WHERE id = $1 RETURNING total_debt_cents`
	logger.DatabaseCall("RecomputeDebt", query, "userID", userID)

	var debt int32
	err := r.db.QueryRowContext(ctx, query, userID, time.Now()).Scan(&debt)
	logger.DatabaseResult("RecomputeDebt", 1, err, "userID", userID)
	if err != nil {
		return 0, translateError(err, "user", userID)
	}
	return debt, nil
}

func (r *userRepository) TotalOutstandingDebt(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_debt_cents), 0) FROM users`).Scan(&total)
	return total, err
}
