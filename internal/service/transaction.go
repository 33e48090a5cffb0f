package service

import (
	"context"
	"fmt"
	"strings"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/utils"
)

type transactionService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	clock utils.Clock
}

func NewTransactionService(repos repository.Repositories, uow repository.UnitOfWork, clock utils.Clock) TransactionService {
	return &transactionService{
		repos: repos,
		uow:   uow,
		clock: clock,
	}
}

// CreateTransaction books a manual entry. Rental charges are only created by
// returning a rental. Payments record money already received, so they are
// stored as paid and never count towards debt.
func (s *transactionService) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	logger.EnterMethod("transactionService.CreateTransaction", "userID", txn.UserID, "type", txn.Type, "amount", txn.AmountCents)

	fields := map[string]string{}
	if txn.UserID <= 0 {
		fields["user_id"] = "is required"
	}
	switch {
	case !txn.Type.Valid():
		fields["type"] = fmt.Sprintf("unknown transaction type %q", txn.Type)
	case txn.Type == domain.TransactionTypeRental:
		fields["type"] = "rental charges are created when a rental is returned"
	}
	if txn.AmountCents <= 0 {
		fields["amount_cents"] = "must be positive"
	}
	if txn.Method != "" && !txn.Method.Valid() {
		fields["method"] = fmt.Sprintf("unknown payment method %q", txn.Method)
	}
	if txn.Type == domain.TransactionTypePayment && txn.Method == "" {
		fields["method"] = "is required for payments"
	}
	if len(fields) > 0 {
		err := &domain.ValidationError{Fields: fields}
		logger.ExitMethodWithError("transactionService.CreateTransaction", err)
		return err
	}

	now := s.clock.Now()
	if txn.Date.IsZero() {
		txn.Date = s.clock.Today()
	}
	txn.Description = strings.TrimSpace(txn.Description)
	txn.RentalID = nil
	txn.Status = domain.TransactionStatusPending
	txn.PaidAt = nil
	if txn.Type == domain.TransactionTypePayment {
		txn.Status = domain.TransactionStatusPaid
		txn.PaidAt = &now
	}

	err := s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Users.GetByID(ctx, txn.UserID); err != nil {
			return err
		}
		if err := repos.Transactions.Create(ctx, txn); err != nil {
			return err
		}
		_, err := repos.Users.RecomputeDebt(ctx, txn.UserID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("transactionService.CreateTransaction", err, "userID", txn.UserID)
		return err
	}

	logger.ExitMethod("transactionService.CreateTransaction", "transactionID", txn.ID)
	return nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id int32) (*domain.Transaction, error) {
	return s.repos.Transactions.GetByID(ctx, id)
}

func (s *transactionService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int32, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.NewValidationError("status", fmt.Sprintf("unknown transaction status %q", filter.Status))
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, domain.NewValidationError("type", fmt.Sprintf("unknown transaction type %q", filter.Type))
	}
	return s.repos.Transactions.List(ctx, filter)
}

// PayTransaction settles a pending transaction and lowers the owner's debt in
// the same SQL transaction.
func (s *transactionService) PayTransaction(ctx context.Context, id int32, method domain.PaymentMethod) (*domain.Transaction, error) {
	logger.EnterMethod("transactionService.PayTransaction", "transactionID", id, "method", method)

	if !method.Valid() {
		return nil, domain.NewValidationError("method", fmt.Sprintf("unknown payment method %q", method))
	}

	txn, err := s.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("transactionService.PayTransaction", err, "transactionID", id)
		return nil, err
	}
	if !txn.Status.CanTransitionTo(domain.TransactionStatusPaid) {
		err := &domain.InvalidTransitionError{Entity: "transaction", From: string(txn.Status), To: string(domain.TransactionStatusPaid)}
		logger.ExitMethodWithError("transactionService.PayTransaction", err, "transactionID", id)
		return nil, err
	}

	now := s.clock.Now()
	paid := *txn
	paid.Method = method
	paid.PaidAt = &now
	err = s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Transactions.MarkPaid(ctx, &paid); err != nil {
			return err
		}
		_, err := repos.Users.RecomputeDebt(ctx, paid.UserID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("transactionService.PayTransaction", err, "transactionID", id)
		return nil, err
	}

	logger.ExitMethod("transactionService.PayTransaction", "transactionID", id)
	return &paid, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, id int32) error {
	logger.EnterMethod("transactionService.DeleteTransaction", "transactionID", id)

	err := s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		txn, err := repos.Transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Transactions.Delete(ctx, id); err != nil {
			return err
		}
		_, err = repos.Users.RecomputeDebt(ctx, txn.UserID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("transactionService.DeleteTransaction", err, "transactionID", id)
		return err
	}

	logger.ExitMethod("transactionService.DeleteTransaction", "transactionID", id)
	return nil
}

func (s *transactionService) GetUserDebt(ctx context.Context, userID int32) (int32, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TotalDebtCents, nil
}
