package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"contentdesk/internal/auth"
	"contentdesk/internal/email"
	"contentdesk/internal/logging"
	"contentdesk/internal/models"
	"contentdesk/internal/ratelimit"
	"contentdesk/internal/repository"

	"go.uber.org/zap"
)

// LoginResult is the outcome of a successful code verification
type LoginResult struct {
	User  *models.User
	Token string
	// MaxAge is the cookie lifetime in seconds
	MaxAge int
}

// LoginService runs the password check followed by the emailed code step-up
type LoginService struct {
	flow
	users    repository.UserRepository
	sessions repository.LoginSessionRepository
	tokens   *auth.TokenCodec

	dummyMu       sync.Mutex
	dummyHash     string
	dummyPassword string
}

const fallbackPassword = "fallback-password-for-unknown-accounts"

func NewLoginService(
	users repository.UserRepository,
	sessions repository.LoginSessionRepository,
	limiter *ratelimit.Limiter,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenCodec,
	mailer email.Sender,
	audit *logging.AuditLogger,
	opts Options,
) *LoginService {
	if audit == nil {
		audit = logging.NewAuditLogger(nil)
	}
	return &LoginService{
		flow: flow{
			limiter: limiter,
			hasher:  hasher,
			mailer:  mailer,
			audit:   audit,
			opts:    opts.withDefaults(),
		},
		users:         users,
		sessions:      sessions,
		tokens:        tokens,
		dummyPassword: fallbackPassword,
	}
}

// Login checks the password and, on success, emails a code and returns the
// id of the session that must be verified with it.
func (s *LoginService) Login(ctx context.Context, emailAddr, password string) (string, error) {
	emailAddr = repository.NormalizeEmail(emailAddr)

	if _, err := s.allow(ctx, ratelimit.LoginPolicy, emailAddr); err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return "", fmt.Errorf("failed to look up user: %w", err)
		}
		// Spend the same hashing work as a real comparison
		hash, err := s.fallbackHash()
		if err != nil {
			s.audit.Log.Error("failed to build fallback password hash", zap.Error(err))
		}
		s.hasher.ComparePassword(hash, password)
		s.audit.LogFailure("login_failed", "unknown_email", logEmail(emailAddr))
		return "", ErrInvalidCredentials
	}
	if !s.hasher.ComparePassword(user.PasswordHash, password) {
		s.audit.LogFailure("login_failed", "wrong_password", logEmail(emailAddr))
		return "", ErrInvalidCredentials
	}

	code, err := auth.GenerateOTP(s.opts.OTPLength)
	if err != nil {
		return "", err
	}
	sessionID, err := auth.NewSessionID()
	if err != nil {
		return "", err
	}

	now := s.now()
	session := &models.LoginSession{
		SessionID:        sessionID,
		UserID:           user.ID,
		Email:            user.Email,
		VerificationCode: code,
		CodeExpires:      now.Add(LoginCodeTTL),
		CreatedAt:        now,
		ExpiresAt:        now.Add(LoginSessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create login session: %w", err)
	}

	msg, err := email.LoginCode(s.opts.AppName, user.Email, code, LoginCodeTTL)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
			s.audit.Log.Error("failed to remove undeliverable login session", logSession(sessionID), zap.Error(delErr))
		}
		s.audit.LogFailure("login_code_failed", err.Error(), logEmail(user.Email))
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}

	s.audit.LogEvent("login_code_sent", logEmail(user.Email), logSession(sessionID))
	return sessionID, nil
}

// Verify checks the code for a login session and issues a session token
func (s *LoginService) Verify(ctx context.Context, sessionID, code string) (*LoginResult, error) {
	// Ids we never issued cannot name a session
	if !auth.IsValidSessionID(sessionID) {
		return nil, ErrInvalidSession
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load login session: %w", err)
	}

	now := s.now()
	if session.IsExpired(now) {
		s.audit.LogFailure("login_verify_failed", "session_expired", logSession(sessionID))
		return nil, ErrSessionExpired
	}

	res, err := s.allow(ctx, ratelimit.VerifyLoginPolicy, session.Email)
	if err != nil {
		return nil, err
	}

	if session.CodeExpired(now) {
		return nil, ErrCodeExpired
	}
	if !auth.CodesEqual(session.VerificationCode, code) {
		s.audit.LogFailure("login_verify_failed", "code_mismatch", logEmail(session.Email))
		return nil, &CodeMismatchError{Remaining: res.Remaining}
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	// Only one concurrent verify can consume the session
	if _, err := s.sessions.Consume(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to consume login session: %w", err)
	}

	if err := s.limiter.ResetPolicies(ctx, session.Email, ratelimit.VerifyLoginPolicy, ratelimit.LoginPolicy); err != nil {
		return nil, err
	}

	if !user.EmailVerified {
		if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to mark email verified: %w", err)
		}
		user.EmailVerified = true
	}

	token, err := s.tokens.Sign(user.ID, user.Role, s.opts.SessionTTL)
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent("login_verified", logEmail(user.Email), zap.String("user_id", user.ID.String()))
	return &LoginResult{
		User:   user,
		Token:  token,
		MaxAge: int(s.opts.SessionTTL.Seconds()),
	}, nil
}

// PurgeExpired deletes login sessions whose lifetime has ended
func (s *LoginService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

// fallbackHash is compared against when the account does not exist. A failed
// build is retried on the next call.
func (s *LoginService) fallbackHash() (string, error) {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash != "" {
		return s.dummyHash, nil
	}
	hash, err := s.hasher.HashPassword(s.dummyPassword)
	if err != nil {
		return "", err
	}
	s.dummyHash = hash
	return hash, nil
}
