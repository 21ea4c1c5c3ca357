package service

import (
	"context"
	"errors"
	"fmt"

	"contentdesk/internal/auth"
	"contentdesk/internal/logging"
	"contentdesk/internal/models"
	"contentdesk/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountService serves the signed-in user
type AccountService struct {
	flow
	users repository.UserRepository
}

func NewAccountService(users repository.UserRepository, hasher *auth.PasswordHasher, audit *logging.AuditLogger) *AccountService {
	if audit == nil {
		audit = logging.NewAuditLogger(nil)
	}
	return &AccountService{
		flow:  flow{hasher: hasher, audit: audit, opts: Options{}.withDefaults()},
		users: users,
	}
}

// ChangePassword replaces the user's password and clears the must-change flag
func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, password string) error {
	hash, err := s.checkPassword(password)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidSession
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.audit.LogEvent("password_changed", zap.String("user_id", userID.String()))
	return nil
}

// Me returns the signed-in user
func (s *AccountService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
