package memory

import (
	"context"
	"sync"
	"time"

	"contentdesk/internal/models"
	"contentdesk/internal/repository"

	"github.com/google/uuid"
)

type PasswordResetRepo struct {
	mu       sync.Mutex
	sessions map[string]models.PasswordResetSession
	users    *UserRepo
}

// NewPasswordResetRepo creates a reset session store whose completed resets
// write to users
func NewPasswordResetRepo(users *UserRepo) *PasswordResetRepo {
	return &PasswordResetRepo{
		sessions: make(map[string]models.PasswordResetSession),
		users:    users,
	}
}

func (r *PasswordResetRepo) Replace(ctx context.Context, s *models.PasswordResetSession) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.sessions {
		if existing.UserID == s.UserID {
			delete(r.sessions, id)
		}
	}
	r.sessions[s.SessionID] = *s
	return nil
}

func (r *PasswordResetRepo) GetByID(ctx context.Context, sessionID string) (*models.PasswordResetSession, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (r *PasswordResetRepo) UpdateCode(ctx context.Context, sessionID, code string, codeExpires, now time.Time) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.IsExpired(now) {
		return repository.ErrSessionNotFound
	}
	if codeExpires.After(s.ExpiresAt) {
		codeExpires = s.ExpiresAt
	}
	s.VerificationCode = code
	s.CodeExpires = codeExpires
	r.sessions[sessionID] = s
	return nil
}

func (r *PasswordResetRepo) MarkVerified(ctx context.Context, sessionID, code string, now time.Time) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.IsExpired(now) || s.CodeExpired(now) || s.VerificationCode != code {
		return repository.ErrSessionStale
	}
	s.Verified = true
	r.sessions[sessionID] = s
	return nil
}

func (r *PasswordResetRepo) CompleteReset(ctx context.Context, sessionID, passwordHash string, now time.Time) (*models.PasswordResetSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok || !s.Verified || s.IsExpired(now) {
		return nil, repository.ErrSessionNotFound
	}
	// The session is only removed once the password is stored
	if err := r.users.UpdatePassword(ctx, s.UserID, passwordHash); err != nil {
		return nil, err
	}
	delete(r.sessions, sessionID)
	return &s, nil
}

func (r *PasswordResetRepo) Delete(ctx context.Context, sessionID string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

func (r *PasswordResetRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if s.IsExpired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

// CountForUser returns how many sessions the user currently holds
func (r *PasswordResetRepo) CountForUser(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n
}
