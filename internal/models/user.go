package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User represents an account that can sign in to the admin area
type User struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Role               string    `json:"role"`
	MustChangePassword bool      `json:"must_change_password"`
	EmailVerified      bool      `json:"email_verified"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// MeResponse describes the signed-in user
type MeResponse struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email" example:"editor@example.com"`
	Role               string    `json:"role" example:"editor"`
	MustChangePassword bool      `json:"mustChangePassword"`
	EmailVerified      bool      `json:"emailVerified"`
}
