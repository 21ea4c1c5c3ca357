package postgres

import (
	"context"
	"database/sql"
	"time"

	"contentdesk/internal/models"
	"contentdesk/internal/repository"
)

type loginSessionRepository struct {
	repository.BaseRepository
}

// NewLoginSessionRepository creates a new PostgreSQL login session repository
func NewLoginSessionRepository(db *sql.DB) repository.LoginSessionRepository {
	return &loginSessionRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

const loginSessionColumns = `session_id, user_id, email, verification_code, code_expires, created_at, expires_at`

func (r *loginSessionRepository) Create(ctx context.Context, s *models.LoginSession) error {
	query := `
		INSERT INTO login_sessions (` + loginSessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB().ExecContext(ctx, query,
		s.SessionID,
		s.UserID,
		s.Email,
		s.VerificationCode,
		s.CodeExpires,
		s.CreatedAt,
		s.ExpiresAt,
	)
	return err
}

func (r *loginSessionRepository) GetByID(ctx context.Context, sessionID string) (*models.LoginSession, error) {
	query := `SELECT ` + loginSessionColumns + ` FROM login_sessions WHERE session_id = $1`
	return scanLoginSession(r.DB().QueryRowContext(ctx, query, sessionID))
}

func (r *loginSessionRepository) Consume(ctx context.Context, sessionID string) (*models.LoginSession, error) {
	query := `DELETE FROM login_sessions WHERE session_id = $1 RETURNING ` + loginSessionColumns
	return scanLoginSession(r.DB().QueryRowContext(ctx, query, sessionID))
}

func (r *loginSessionRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.DB().ExecContext(ctx, `DELETE FROM login_sessions WHERE session_id = $1`, sessionID)
	return err
}

func (r *loginSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.DB().ExecContext(ctx, `DELETE FROM login_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanLoginSession(row *sql.Row) (*models.LoginSession, error) {
	s := &models.LoginSession{}
	err := row.Scan(
		&s.SessionID,
		&s.UserID,
		&s.Email,
		&s.VerificationCode,
		&s.CodeExpires,
		&s.CreatedAt,
		&s.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
