package service

import (
	"fmt"
	"time"

	"contentdesk/internal/auth"
	"contentdesk/internal/config"
	"contentdesk/internal/email"
	"contentdesk/internal/logging"
	"contentdesk/internal/ratelimit"
	"contentdesk/internal/repository"

	"go.uber.org/zap"
)

// Stores groups the repositories the flows run on
type Stores struct {
	Users         repository.UserRepository
	LoginSessions repository.LoginSessionRepository
	ResetSessions repository.PasswordResetRepository
	RateLimits    repository.RateLimitRepository
}

// Services is the fully wired set of flows and the primitives they share
type Services struct {
	Login    *LoginService
	Recovery *RecoveryService
	Account  *AccountService
	Limiter  *ratelimit.Limiter
	Tokens   *auth.TokenCodec
}

// New wires the flows from configuration. now may be nil to use the wall clock.
func New(cfg *config.Config, stores Stores, mailer email.Sender, log *zap.Logger, now func() time.Time) (*Services, error) {
	if now == nil {
		now = time.Now
	}

	tokens, err := auth.NewTokenCodec(cfg.Auth.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	limiter := ratelimit.New(stores.RateLimits).WithClock(now)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	audit := logging.NewAuditLogger(log)
	opts := Options{
		AppName:    cfg.Email.AppName,
		OTPLength:  cfg.Auth.OTPLength,
		SessionTTL: cfg.Auth.SessionTTL,
		Now:        now,
	}

	return &Services{
		Login:    NewLoginService(stores.Users, stores.LoginSessions, limiter, hasher, tokens, mailer, audit, opts),
		Recovery: NewRecoveryService(stores.Users, stores.ResetSessions, limiter, hasher, mailer, audit, opts),
		Account:  NewAccountService(stores.Users, hasher, audit),
		Limiter:  limiter,
		Tokens:   tokens,
	}, nil
}
