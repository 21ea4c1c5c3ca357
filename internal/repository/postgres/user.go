package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"contentdesk/internal/models"
	"contentdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type userRepository struct {
	repository.BaseRepository
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, role, must_change_password,
			email_verified, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $7
		)
		RETURNING created_at, updated_at`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleEditor
	}
	user.Email = repository.NormalizeEmail(user.Email)

	err := r.DB().QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.MustChangePassword,
		user.EmailVerified,
		time.Now(),
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repository.ErrEmailExists
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, role, must_change_password,
		       email_verified, created_at, updated_at
		FROM users
		WHERE id = $1`

	return r.scanOne(r.DB().QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, role, must_change_password,
		       email_verified, created_at, updated_at
		FROM users
		WHERE LOWER(email) = $1`

	return r.scanOne(r.DB().QueryRowContext(ctx, query, repository.NormalizeEmail(email)))
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1,
		    must_change_password = FALSE,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`

	return r.execOne(ctx, query, passwordHash, id)
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET email_verified = TRUE,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	return r.execOne(ctx, query, id)
}

func (r *userRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.MustChangePassword,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.DB().ExecContext(ctx, query, args...)
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

	return nil
}
