package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials covers both unknown accounts and wrong passwords
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
	ErrSessionExpired     = errors.New("session expired")
	ErrCodeExpired        = errors.New("code expired")
	ErrCodeMismatch       = errors.New("invalid code")
	ErrNotVerified        = errors.New("please verify your code first")
	ErrDeliveryFailure    = errors.New("failed to send verification code")

	// ErrInvalidResetSession covers unknown, expired and inert reset sessions
	ErrInvalidResetSession = errors.New("invalid or expired session")
)

// RateLimitedError is returned when an attempt counter is exhausted
type RateLimitedError struct {
	// RetryAfter is in whole seconds
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, retry in %ds", e.RetryAfter)
}

// WeakPasswordError lists every password rule that failed
type WeakPasswordError struct {
	Violations []string
}

func (e *WeakPasswordError) Error() string {
	return "password does not meet requirements: " + strings.Join(e.Violations, ", ")
}

// CodeMismatchError reports a wrong code together with the attempts left
type CodeMismatchError struct {
	Remaining int
}

func (e *CodeMismatchError) Error() string {
	return ErrCodeMismatch.Error()
}

func (e *CodeMismatchError) Is(target error) bool {
	return target == ErrCodeMismatch
}
