// Package memory provides in-process repository implementations for tests
// and single-instance development servers.
package memory

import (
	"context"
	"sync"
	"time"

	"contentdesk/internal/models"
	"contentdesk/internal/repository"

	"github.com/google/uuid"
)

type UserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		users: make(map[uuid.UUID]models.User),
	}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	email := repository.NormalizeEmail(user.Email)
	for _, existing := range r.users {
		if existing.Email == email {
			return repository.ErrEmailExists
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleEditor
	}
	now := time.Now()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	_ = ctx

	email = repository.NormalizeEmail(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(ctx, id, func(u *models.User) {
		u.PasswordHash = passwordHash
		u.MustChangePassword = false
	})
}

func (r *UserRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, func(u *models.User) {
		u.EmailVerified = true
	})
}

func (r *UserRepo) update(ctx context.Context, id uuid.UUID, fn func(*models.User)) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}
