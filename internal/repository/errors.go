package repository

import "errors"

var (
	// Common errors
	ErrDuplicateEntry = errors.New("duplicate entry")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionStale is returned when a conditional update lost a race with another writer
	ErrSessionStale = errors.New("session changed concurrently")
)
