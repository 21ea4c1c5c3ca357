package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginSession scopes a login OTP to one password check
type LoginSession struct {
	SessionID        string    `json:"session_id"`
	UserID           uuid.UUID `json:"user_id"`
	Email            string    `json:"email"`
	VerificationCode string    `json:"-"`
	CodeExpires      time.Time `json:"code_expires"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// IsExpired reports whether the session can no longer be used at now
func (s *LoginSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CodeExpired reports whether the verification code can no longer be accepted at now
func (s *LoginSession) CodeExpired(now time.Time) bool {
	return !now.Before(s.CodeExpires)
}

// PasswordResetSession scopes a recovery OTP to one reset request
type PasswordResetSession struct {
	SessionID        string    `json:"session_id"`
	UserID           uuid.UUID `json:"user_id"`
	Email            string    `json:"email"`
	VerificationCode string    `json:"-"`
	CodeExpires      time.Time `json:"code_expires"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	Verified         bool      `json:"verified"`
}

// IsExpired reports whether the session can no longer be used at now
func (s *PasswordResetSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CodeExpired reports whether the verification code can no longer be accepted at now
func (s *PasswordResetSession) CodeExpired(now time.Time) bool {
	return !now.Before(s.CodeExpires)
}

// RateLimitRecord is one fixed window of attempts for a key
type RateLimitRecord struct {
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsLive reports whether the window is still open at now
func (r *RateLimitRecord) IsLive(now time.Time) bool {
	return now.Before(r.ExpiresAt)
}
