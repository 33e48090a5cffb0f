package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// either standalone or inside Store.WithinTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.CategoryRepository
	repository.ToolRepository
	repository.RentalRepository
	repository.TransactionRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		UserRepository:        NewUserRepository(db),
		CategoryRepository:    NewCategoryRepository(db),
		ToolRepository:        NewToolRepository(db),
		RentalRepository:      NewRentalRepository(db),
		TransactionRepository: NewTransactionRepository(db),
	}
}

// Repositories returns the store's repositories bound to the connection pool.
func (s *Store) Repositories() repository.Repositories {
	return newRepositories(s.db)
}

func newRepositories(db DBTX) repository.Repositories {
	return repository.Repositories{
		Users:        NewUserRepository(db),
		Categories:   NewCategoryRepository(db),
		Tools:        NewToolRepository(db),
		Rentals:      NewRentalRepository(db),
		Transactions: NewTransactionRepository(db),
	}
}

// WithinTx runs fn inside a single SQL transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	logger.DatabaseCall("BeginTx", "BEGIN")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.DatabaseResult("BeginTx", 0, err)
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		_ = tx.Rollback()
	}()

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.DatabaseResult("Commit", 0, err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PingContext checks that the database is reachable.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translateError maps driver errors onto domain errors for the given entity.
func translateError(err error, entity string, id int32) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return &domain.ConflictError{Entity: entity, ID: id, Detail: "duplicate value violates " + pqErr.Constraint}
		case pqForeignKeyViolation:
			return &domain.ValidationError{Fields: map[string]string{pqErr.Constraint: "references a record that does not exist"}}
		}
	}
	return err
}

// requireOneRow turns a compare-and-set update that matched nothing into a
// conflict.
func requireOneRow(res sql.Result, entity string, id int32, detail string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.ConflictError{Entity: entity, ID: id, Detail: detail}
	}
	return nil
}

func notFoundIfNone(res sql.Result, entity string, id int32) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

// pagination normalizes page and pageSize into LIMIT and OFFSET values.
func pagination(page, pageSize int32) (limit, offset int32) {
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 500 {
		pageSize = 500
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
