package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is not active")
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	logger.EnterMethod("authService.Login", "email", email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = ErrInvalidCredentials
		}
		logger.ExitMethodWithError("authService.Login", err, "email", email)
		return nil, "", "", err
	}
	if user.PasswordHash == "" {
		logger.ExitMethodWithError("authService.Login", ErrInvalidCredentials, "userID", user.ID)
		return nil, "", "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.ExitMethodWithError("authService.Login", ErrInvalidCredentials, "userID", user.ID)
		return nil, "", "", ErrInvalidCredentials
	}
	if user.Status != domain.UserStatusActive {
		return nil, "", "", ErrAccountInactive
	}

	access, refresh, err := s.issue(user)
	if err != nil {
		return nil, "", "", err
	}

	logger.ExitMethod("authService.Login", "userID", user.ID, "role", user.Role)
	return user, access, refresh, nil
}

func (s *authService) RefreshToken(ctx context.Context, refresh string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refresh)
	if err != nil {
		return "", "", err
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", "", security.ErrWrongTokenType
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", err
	}
	if user.Status != domain.UserStatusActive {
		return "", "", ErrAccountInactive
	}
	return s.issue(user)
}

func (s *authService) issue(user *domain.User) (string, string, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
