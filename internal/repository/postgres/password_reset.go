package postgres

import (
	"context"
	"database/sql"
	"time"

	"contentdesk/internal/models"
	"contentdesk/internal/repository"
)

type passwordResetRepository struct {
	repository.BaseRepository
}

// NewPasswordResetRepository creates a new PostgreSQL password reset session repository
func NewPasswordResetRepository(db *sql.DB) repository.PasswordResetRepository {
	return &passwordResetRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

const resetSessionColumns = `session_id, user_id, email, verification_code, code_expires, created_at, expires_at, verified`

func (r *passwordResetRepository) Replace(ctx context.Context, s *models.PasswordResetSession) error {
	return r.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM password_reset_sessions WHERE user_id = $1`, s.UserID); err != nil {
			return err
		}

		// A concurrent request for the same user may have inserted after our
		// delete; the user_id unique index turns that into an in-place replace.
		query := `
			INSERT INTO password_reset_sessions (` + resetSessionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (user_id) DO UPDATE SET
				session_id = EXCLUDED.session_id,
				email = EXCLUDED.email,
				verification_code = EXCLUDED.verification_code,
				code_expires = EXCLUDED.code_expires,
				created_at = EXCLUDED.created_at,
				expires_at = EXCLUDED.expires_at,
				verified = EXCLUDED.verified`

		_, err := tx.ExecContext(ctx, query,
			s.SessionID,
			s.UserID,
			s.Email,
			s.VerificationCode,
			s.CodeExpires,
			s.CreatedAt,
			s.ExpiresAt,
			s.Verified,
		)
		return err
	})
}

func (r *passwordResetRepository) GetByID(ctx context.Context, sessionID string) (*models.PasswordResetSession, error) {
	query := `SELECT ` + resetSessionColumns + ` FROM password_reset_sessions WHERE session_id = $1`
	return scanResetSession(r.DB().QueryRowContext(ctx, query, sessionID))
}

func (r *passwordResetRepository) UpdateCode(ctx context.Context, sessionID, code string, codeExpires, now time.Time) error {
	query := `
		UPDATE password_reset_sessions
		SET verification_code = $1,
		    code_expires = LEAST($2::timestamptz, expires_at)
		WHERE session_id = $3 AND expires_at > $4`

	return execSession(ctx, r.DB(), repository.ErrSessionNotFound, query, code, codeExpires, sessionID, now)
}

func (r *passwordResetRepository) MarkVerified(ctx context.Context, sessionID, code string, now time.Time) error {
	query := `
		UPDATE password_reset_sessions
		SET verified = TRUE
		WHERE session_id = $1
		  AND verification_code = $2
		  AND code_expires > $3
		  AND expires_at > $3`

	return execSession(ctx, r.DB(), repository.ErrSessionStale, query, sessionID, code, now)
}

func (r *passwordResetRepository) CompleteReset(ctx context.Context, sessionID, passwordHash string, now time.Time) (*models.PasswordResetSession, error) {
	var consumed *models.PasswordResetSession
	err := r.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			DELETE FROM password_reset_sessions
			WHERE session_id = $1 AND verified = TRUE AND expires_at > $2
			RETURNING ` + resetSessionColumns

		s, err := scanResetSession(tx.QueryRowContext(ctx, query, sessionID, now))
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET password_hash = $1,
			    must_change_password = FALSE,
			    updated_at = CURRENT_TIMESTAMP
			WHERE id = $2`, passwordHash, s.UserID)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return repository.ErrUserNotFound
		}

		consumed = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

func (r *passwordResetRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.DB().ExecContext(ctx, `DELETE FROM password_reset_sessions WHERE session_id = $1`, sessionID)
	return err
}

func (r *passwordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.DB().ExecContext(ctx, `DELETE FROM password_reset_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanResetSession(row *sql.Row) (*models.PasswordResetSession, error) {
	s := &models.PasswordResetSession{}
	err := row.Scan(
		&s.SessionID,
		&s.UserID,
		&s.Email,
		&s.VerificationCode,
		&s.CodeExpires,
		&s.CreatedAt,
		&s.ExpiresAt,
		&s.Verified,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func execSession(ctx context.Context, db *sql.DB, notFound error, query string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}

	return nil
}
