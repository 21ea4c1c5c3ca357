package service

import (
	"context"
	"errors"
	"fmt"

	"contentdesk/internal/auth"
	"contentdesk/internal/email"
	"contentdesk/internal/logging"
	"contentdesk/internal/models"
	"contentdesk/internal/ratelimit"
	"contentdesk/internal/repository"

	"go.uber.org/zap"
)

// RecoveryService runs the emailed-code password reset flow
type RecoveryService struct {
	flow
	users    repository.UserRepository
	sessions repository.PasswordResetRepository
}

func NewRecoveryService(
	users repository.UserRepository,
	sessions repository.PasswordResetRepository,
	limiter *ratelimit.Limiter,
	hasher *auth.PasswordHasher,
	mailer email.Sender,
	audit *logging.AuditLogger,
	opts Options,
) *RecoveryService {
	if audit == nil {
		audit = logging.NewAuditLogger(nil)
	}
	return &RecoveryService{
		flow: flow{
			limiter: limiter,
			hasher:  hasher,
			mailer:  mailer,
			audit:   audit,
			opts:    opts.withDefaults(),
		},
		users:    users,
		sessions: sessions,
	}
}

// Request starts recovery for emailAddr. A session id is returned whether or
// not the account exists; for unknown addresses nothing backs it.
func (s *RecoveryService) Request(ctx context.Context, emailAddr string) (string, error) {
	emailAddr = repository.NormalizeEmail(emailAddr)

	if _, err := s.allow(ctx, ratelimit.ForgotPasswordPolicy, emailAddr); err != nil {
		return "", err
	}

	sessionID, err := auth.NewSessionID()
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.audit.LogEvent("reset_requested_unknown", logEmail(emailAddr))
			return sessionID, nil
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	code, err := auth.GenerateOTP(s.opts.OTPLength)
	if err != nil {
		return "", err
	}

	now := s.now()
	session := &models.PasswordResetSession{
		SessionID:        sessionID,
		UserID:           user.ID,
		Email:            user.Email,
		VerificationCode: code,
		CodeExpires:      now.Add(ResetCodeTTL),
		CreatedAt:        now,
		ExpiresAt:        now.Add(ResetSessionTTL),
		Verified:         false,
	}
	if err := s.sessions.Replace(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create reset session: %w", err)
	}

	if err := s.sendCode(ctx, user.Email, code); err != nil {
		if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
			s.audit.Log.Error("failed to remove undeliverable reset session", logSession(sessionID), zap.Error(delErr))
		}
		return "", err
	}

	s.audit.LogEvent("reset_requested", logEmail(user.Email), logSession(sessionID))
	return sessionID, nil
}

// Resend replaces the code of a live reset session and emails it again
func (s *RecoveryService) Resend(ctx context.Context, sessionID string) error {
	session, err := s.liveSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if _, err := s.allow(ctx, ratelimit.ResendResetPolicy, session.Email); err != nil {
		return err
	}

	code, err := auth.GenerateOTP(s.opts.OTPLength)
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.sessions.UpdateCode(ctx, sessionID, code, now.Add(ResetCodeTTL), now); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrInvalidResetSession
		}
		return fmt.Errorf("failed to update reset code: %w", err)
	}

	if err := s.sendCode(ctx, session.Email, code); err != nil {
		return err
	}

	s.audit.LogEvent("reset_code_resent", logEmail(session.Email), logSession(sessionID))
	return nil
}

// Verify checks the code of a reset session and marks the session verified
func (s *RecoveryService) Verify(ctx context.Context, sessionID, code string) error {
	session, err := s.liveSession(ctx, sessionID)
	if err != nil {
		return err
	}

	res, err := s.allow(ctx, ratelimit.VerifyResetPolicy, session.Email)
	if err != nil {
		return err
	}

	now := s.now()
	if session.CodeExpired(now) {
		return ErrCodeExpired
	}
	if !auth.CodesEqual(session.VerificationCode, code) {
		s.audit.LogFailure("reset_verify_failed", "code_mismatch", logEmail(session.Email))
		return &CodeMismatchError{Remaining: res.Remaining}
	}

	// The code may have been replaced by a resend since it was read
	if err := s.sessions.MarkVerified(ctx, sessionID, code, now); err != nil {
		if errors.Is(err, repository.ErrSessionStale) {
			return &CodeMismatchError{Remaining: res.Remaining}
		}
		return fmt.Errorf("failed to mark reset session verified: %w", err)
	}

	if err := s.limiter.ResetPolicies(ctx, session.Email, ratelimit.VerifyResetPolicy); err != nil {
		return err
	}

	s.audit.LogEvent("reset_verified", logEmail(session.Email), logSession(sessionID))
	return nil
}

// Reset sets a new password for the owner of a verified reset session
func (s *RecoveryService) Reset(ctx context.Context, sessionID, password string) error {
	if violations := auth.ValidatePassword(password); len(violations) > 0 {
		return &WeakPasswordError{Violations: violations}
	}

	session, err := s.liveSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.Verified {
		return ErrNotVerified
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Only one concurrent reset can consume the session, and a failed password
	// write leaves it in place for a retry
	consumed, err := s.sessions.CompleteReset(ctx, sessionID, hash, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrInvalidResetSession
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	if err := s.limiter.ResetPolicies(ctx, consumed.Email,
		ratelimit.ForgotPasswordPolicy,
		ratelimit.ResendResetPolicy,
		ratelimit.VerifyResetPolicy,
	); err != nil {
		return err
	}

	s.audit.LogEvent("password_reset", logEmail(consumed.Email), zap.String("user_id", consumed.UserID.String()))
	return nil
}

// PurgeExpired deletes reset sessions whose lifetime has ended
func (s *RecoveryService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func (s *RecoveryService) liveSession(ctx context.Context, sessionID string) (*models.PasswordResetSession, error) {
	if !auth.IsValidSessionID(sessionID) {
		return nil, ErrInvalidResetSession
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidResetSession
		}
		return nil, fmt.Errorf("failed to load reset session: %w", err)
	}
	if session.IsExpired(s.now()) {
		return nil, ErrInvalidResetSession
	}
	return session, nil
}

func (s *RecoveryService) sendCode(ctx context.Context, to, code string) error {
	msg, err := email.PasswordResetCode(s.opts.AppName, to, code, ResetCodeTTL)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.audit.LogFailure("reset_code_failed", err.Error(), logEmail(to))
		return fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}
	return nil
}
