package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/utils"
)

var validate = validator.New()

type userService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	clock utils.Clock
}

func NewUserService(repos repository.Repositories, uow repository.UnitOfWork, clock utils.Clock) UserService {
	return &userService{
		repos: repos,
		uow:   uow,
		clock: clock,
	}
}

func (s *userService) CreateUser(ctx context.Context, user *domain.User, password string) error {
	logger.EnterMethod("userService.CreateUser", "email", user.Email)

	if user.Role == "" {
		user.Role = domain.UserRoleMember
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	if err := validateUser(user); err != nil {
		logger.ExitMethodWithError("userService.CreateUser", err)
		return err
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repos.Users.Create(ctx, user); err != nil {
		logger.ExitMethodWithError("userService.CreateUser", err, "email", user.Email)
		return err
	}

	logger.ExitMethod("userService.CreateUser", "userID", user.ID)
	return nil
}

func validateUser(user *domain.User) error {
	fields := map[string]string{}
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	user.BadgeNumber = strings.TrimSpace(user.BadgeNumber)
	if user.Name == "" {
		fields["name"] = "is required"
	}
	if err := validate.Var(user.Email, "required,email"); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if user.BadgeNumber == "" {
		fields["badge_number"] = "is required"
	}
	if !user.Role.Valid() {
		fields["role"] = fmt.Sprintf("unknown role %q", user.Role)
	}
	if !user.Status.Valid() {
		fields["status"] = fmt.Sprintf("unknown status %q", user.Status)
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (s *userService) GetUser(ctx context.Context, id int32) (*domain.User, error) {
	return s.repos.Users.GetByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context, status domain.UserStatus, page, pageSize int32) ([]domain.User, int32, error) {
	if status != "" && !status.Valid() {
		return nil, 0, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	return s.repos.Users.List(ctx, status, page, pageSize)
}

// UpdateUser changes profile fields. Status, membership and debt have their own
// operations and are ignored here.
func (s *userService) UpdateUser(ctx context.Context, user *domain.User) error {
	existing, err := s.repos.Users.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if user.Role == "" {
		user.Role = existing.Role
	}
	user.Status = existing.Status
	if err := validateUser(user); err != nil {
		return err
	}
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return err
	}
	user.MembershipExpiry = existing.MembershipExpiry
	user.TotalDebtCents = existing.TotalDebtCents
	user.CreatedOn = existing.CreatedOn
	return nil
}

func (s *userService) SetUserStatus(ctx context.Context, id int32, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	if err := s.repos.Users.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	logger.Info("User status changed", "userID", id, "status", status)
	return s.repos.Users.GetByID(ctx, id)
}

// RenewMembership extends the membership by months, counting from the current
// expiry when it is still in the future and from today otherwise. A positive
// fee is booked as a pending MembershipFee transaction in the same SQL
// transaction as the new expiry and the debt recompute.
func (s *userService) RenewMembership(ctx context.Context, id int32, months int32, feeCents int32) (*domain.User, *domain.Transaction, error) {
	logger.EnterMethod("userService.RenewMembership", "userID", id, "months", months, "feeCents", feeCents)

	fields := map[string]string{}
	if months <= 0 {
		fields["months"] = "must be positive"
	}
	if feeCents < 0 {
		fields["fee_cents"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, nil, &domain.ValidationError{Fields: fields}
	}

	today := s.clock.Today()
	var user *domain.User
	var fee *domain.Transaction
	err := s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		user, err = repos.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user.Status == domain.UserStatusArchived {
			return domain.NewValidationError("user_id", "archived members cannot be renewed")
		}

		base := today
		if user.MembershipExpiry != nil && user.MembershipExpiry.After(today) {
			base = *user.MembershipExpiry
		}
		expiry := base.AddMonths(int(months))
		if err := repos.Users.UpdateMembershipExpiry(ctx, id, expiry); err != nil {
			return err
		}
		user.MembershipExpiry = &expiry

		if feeCents > 0 {
			fee = &domain.Transaction{
				UserID:      id,
				AmountCents: feeCents,
				Type:        domain.TransactionTypeMembershipFee,
				Status:      domain.TransactionStatusPending,
				Date:        today,
				Description: fmt.Sprintf("Membership renewal for %d months, valid until %s", months, expiry),
			}
			if err := repos.Transactions.Create(ctx, fee); err != nil {
				return err
			}
		}

		user.TotalDebtCents, err = repos.Users.RecomputeDebt(ctx, id)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("userService.RenewMembership", err, "userID", id)
		return nil, nil, err
	}

	logger.ExitMethod("userService.RenewMembership", "userID", id, "expiry", user.MembershipExpiry)
	return user, fee, nil
}

func (s *userService) ListExpiringMemberships(ctx context.Context) ([]domain.User, error) {
	today := s.clock.Today()
	users, err := s.repos.Users.ListMembershipsExpiringBefore(ctx, today.AddDays(utils.MembershipExpiringWindowDays))
	if err != nil {
		return nil, err
	}

	expiring := make([]domain.User, 0, len(users))
	for _, u := range users {
		if utils.IsMembershipExpiringSoon(u.MembershipExpiry, today) {
			expiring = append(expiring, u)
		}
	}
	return expiring, nil
}

func (s *userService) ListExpiredMemberships(ctx context.Context) ([]domain.User, error) {
	today := s.clock.Today()
	users, err := s.repos.Users.ListMembershipsExpiringBefore(ctx, today)
	if err != nil {
		return nil, err
	}

	expired := make([]domain.User, 0, len(users))
	for _, u := range users {
		if utils.IsMembershipExpired(u.MembershipExpiry, today) {
			expired = append(expired, u)
		}
	}
	return expired, nil
}
