package repository

import (
	"context"
	"strings"

	"contentdesk/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user-related storage operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdatePassword stores a new hash and clears the must-change flag
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

// NormalizeEmail is the canonical form used for lookups and rate limit keys
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
