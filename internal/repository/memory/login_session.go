package memory

import (
	"context"
	"sync"
	"time"

	"contentdesk/internal/models"
	"contentdesk/internal/repository"
)

type LoginSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.LoginSession
}

func NewLoginSessionRepo() *LoginSessionRepo {
	return &LoginSessionRepo{
		sessions: make(map[string]models.LoginSession),
	}
}

func (r *LoginSessionRepo) Create(ctx context.Context, s *models.LoginSession) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.SessionID]; exists {
		return repository.ErrDuplicateEntry
	}
	r.sessions[s.SessionID] = *s
	return nil
}

func (r *LoginSessionRepo) GetByID(ctx context.Context, sessionID string) (*models.LoginSession, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (r *LoginSessionRepo) Consume(ctx context.Context, sessionID string) (*models.LoginSession, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	return &s, nil
}

func (r *LoginSessionRepo) Delete(ctx context.Context, sessionID string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

func (r *LoginSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
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

// Len returns the number of stored sessions, expired or not
func (r *LoginSessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
