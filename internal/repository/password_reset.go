package repository

import (
	"context"
	"time"

	"contentdesk/internal/models"
)

// PasswordResetRepository stores account recovery sessions, at most one per user
type PasswordResetRepository interface {
	// Replace removes any session held by the same user and stores the new one
	Replace(ctx context.Context, session *models.PasswordResetSession) error
	GetByID(ctx context.Context, sessionID string) (*models.PasswordResetSession, error)
	// UpdateCode overwrites the code of a live session in place
	UpdateCode(ctx context.Context, sessionID, code string, codeExpires, now time.Time) error
	// MarkVerified flips the verified flag if code is still the current, unexpired code
	MarkVerified(ctx context.Context, sessionID, code string, now time.Time) error
	// CompleteReset deletes a live, verified session and sets its user's password
	// hash as one unit. Neither change is kept if the other fails.
	CompleteReset(ctx context.Context, sessionID, passwordHash string, now time.Time) (*models.PasswordResetSession, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
