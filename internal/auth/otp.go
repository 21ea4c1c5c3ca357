package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	// DefaultOTPLength is the number of digits in an emailed verification code
	DefaultOTPLength = 6
	// SessionIDBytes is the entropy of login and reset session identifiers
	SessionIDBytes = 32
)

// GenerateOTP returns a numeric code drawn uniformly from [10^(length-1), 10^length-1],
// so the first digit is never zero
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = DefaultOTPLength
	}
	if length > 18 {
		return "", fmt.Errorf("otp length %d out of range", length)
	}

	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(low, big.NewInt(10)), low)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return n.Add(n, low).String(), nil
}

// CodesEqual compares a stored and a submitted code as strings in constant time
func CodesEqual(stored, submitted string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

// NewSessionID returns an opaque hex identifier for a login or reset session
func NewSessionID() (string, error) {
	b := make([]byte, SessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
