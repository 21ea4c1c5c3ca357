package repository

import (
	"context"
	"time"

	"contentdesk/internal/models"
)

// LoginSessionRepository stores pending login step-up sessions
type LoginSessionRepository interface {
	Create(ctx context.Context, session *models.LoginSession) error
	GetByID(ctx context.Context, sessionID string) (*models.LoginSession, error)
	// Consume deletes the session and returns it; only one caller can win
	Consume(ctx context.Context, sessionID string) (*models.LoginSession, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
