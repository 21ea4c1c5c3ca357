package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Password policy violations, reported together
const (
	ViolationMinLength = "minimum 8 characters"
	ViolationMaxLength = "maximum 72 bytes"
	ViolationUpper     = "at least one uppercase letter"
	ViolationLower     = "at least one lowercase letter"
	ViolationNumber    = "at least one number"
	ViolationSpecial   = "at least one special character"
)

const (
	// MinPasswordLength is the shortest acceptable password
	MinPasswordLength = 8
	// MaxPasswordBytes is bcrypt's input limit; longer passwords cannot be hashed
	MaxPasswordBytes = 72
	// PasswordSymbols are the characters that satisfy the special character rule
	PasswordSymbols = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?`~"
)

// PasswordHasher hashes and verifies passwords with bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher; a cost outside bcrypt's range falls back to the default
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// HashPassword hashes a password using bcrypt
func (h *PasswordHasher) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), err
}

// ComparePassword reports whether password matches the stored hash
func (h *PasswordHasher) ComparePassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// ValidatePassword returns every policy rule the password violates
func ValidatePassword(password string) []string {
	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSpecial = true
		}
	}

	var violations []string
	if len([]rune(password)) < MinPasswordLength {
		violations = append(violations, ViolationMinLength)
	}
	if len(password) > MaxPasswordBytes {
		violations = append(violations, ViolationMaxLength)
	}
	if !hasUpper {
		violations = append(violations, ViolationUpper)
	}
	if !hasLower {
		violations = append(violations, ViolationLower)
	}
	if !hasNumber {
		violations = append(violations, ViolationNumber)
	}
	if !hasSpecial {
		violations = append(violations, ViolationSpecial)
	}
	return violations
}
