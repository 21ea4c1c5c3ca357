// Package ratelimit implements fixed-window attempt counting on top of a
// shared counter store.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"contentdesk/internal/repository"
)

// Policy names a counter family and its limits
type Policy struct {
	Prefix      string
	MaxAttempts int
	Window      time.Duration
}

// Key returns the counter key for subject under this policy
func (p Policy) Key(subject string) string {
	return p.Prefix + repository.NormalizeEmail(subject)
}

// Policies guarding the authentication endpoints, keyed by email
var (
	LoginPolicy          = Policy{Prefix: "login:", MaxAttempts: 5, Window: 15 * time.Minute}
	VerifyLoginPolicy    = Policy{Prefix: "verify:", MaxAttempts: 10, Window: 15 * time.Minute}
	ForgotPasswordPolicy = Policy{Prefix: "forgot-password:", MaxAttempts: 5, Window: 15 * time.Minute}
	ResendResetPolicy    = Policy{Prefix: "resend-reset:", MaxAttempts: 3, Window: 15 * time.Minute}
	VerifyResetPolicy    = Policy{Prefix: "verify-reset:", MaxAttempts: 10, Window: 15 * time.Minute}
)

// Result is the outcome of a single check
type Result struct {
	Allowed   bool
	Remaining int
	// RetryAfter is whole seconds until the window closes; zero when allowed
	RetryAfter int
}

// Limiter counts attempts per key in fixed windows anchored at the first attempt
type Limiter struct {
	store repository.RateLimitRepository
	now   func() time.Time
}

// New creates a limiter backed by store
func New(store repository.RateLimitRepository) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// WithClock replaces the time source, used by tests that move time forward
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check records one attempt against key and reports whether it is allowed
func (l *Limiter) Check(ctx context.Context, key string, maxAttempts int, window time.Duration) (Result, error) {
	if maxAttempts <= 0 || window <= 0 {
		return Result{}, fmt.Errorf("invalid rate limit for %q: max=%d window=%s", key, maxAttempts, window)
	}

	now := l.now()
	rec, err := l.store.Hit(ctx, key, maxAttempts, window, now)
	if err != nil {
		return Result{}, fmt.Errorf("failed to record attempt for %q: %w", key, err)
	}

	if rec.Count <= maxAttempts {
		return Result{Allowed: true, Remaining: maxAttempts - rec.Count}, nil
	}

	return Result{
		Allowed:    false,
		Remaining:  0,
		RetryAfter: retryAfter(rec.ExpiresAt.Sub(now)),
	}, nil
}

// Allow checks subject against policy
func (l *Limiter) Allow(ctx context.Context, p Policy, subject string) (Result, error) {
	return l.Check(ctx, p.Key(subject), p.MaxAttempts, p.Window)
}

// Reset deletes the counters for keys
func (l *Limiter) Reset(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := l.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to reset rate limits: %w", err)
	}
	return nil
}

// ResetPolicies deletes the counters of subject under each policy
func (l *Limiter) ResetPolicies(ctx context.Context, subject string, policies ...Policy) error {
	keys := make([]string, 0, len(policies))
	for _, p := range policies {
		keys = append(keys, p.Key(subject))
	}
	return l.Reset(ctx, keys...)
}

// Purge removes windows that have closed
func (l *Limiter) Purge(ctx context.Context) (int64, error) {
	return l.store.DeleteExpired(ctx, l.now())
}

func retryAfter(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
