// Package service implements the login and account recovery flows
package service

import (
	"context"
	"fmt"
	"time"

	"contentdesk/internal/auth"
	"contentdesk/internal/email"
	"contentdesk/internal/logging"
	"contentdesk/internal/ratelimit"
)

// Lifetimes of the emailed codes and the sessions that carry them
const (
	LoginCodeTTL    = 10 * time.Minute
	LoginSessionTTL = 15 * time.Minute
	ResetCodeTTL    = 10 * time.Minute
	ResetSessionTTL = 30 * time.Minute
)

// Options holds settings shared by the flows
type Options struct {
	AppName    string
	OTPLength  int
	SessionTTL time.Duration
	// Now overrides the clock; defaults to time.Now
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.AppName == "" {
		o.AppName = "Content Desk"
	}
	if o.OTPLength == 0 {
		o.OTPLength = auth.DefaultOTPLength
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = auth.DefaultSessionTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// flow carries the collaborators every flow needs
type flow struct {
	limiter *ratelimit.Limiter
	hasher  *auth.PasswordHasher
	mailer  email.Sender
	audit   *logging.AuditLogger
	opts    Options
}

func (f *flow) now() time.Time {
	return f.opts.Now()
}

// allow records an attempt and converts a denial into a RateLimitedError
func (f *flow) allow(ctx context.Context, p ratelimit.Policy, subject string) (ratelimit.Result, error) {
	res, err := f.limiter.Allow(ctx, p, subject)
	if err != nil {
		return res, err
	}
	if !res.Allowed {
		f.audit.LogFailure("rate_limited", p.Prefix, logEmail(subject))
		return res, &RateLimitedError{RetryAfter: res.RetryAfter}
	}
	return res, nil
}

// checkPassword applies the acceptance policy and hashes an accepted password
func (f *flow) checkPassword(password string) (string, error) {
	if violations := auth.ValidatePassword(password); len(violations) > 0 {
		return "", &WeakPasswordError{Violations: violations}
	}
	hash, err := f.hasher.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}
