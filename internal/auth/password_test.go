package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.HashPassword("Sup3r!secret")
	require.NoError(t, err)
	require.NotEqual(t, "Sup3r!secret", hash)

	require.True(t, h.ComparePassword(hash, "Sup3r!secret"))
	require.False(t, h.ComparePassword(hash, "sup3r!secret"))
	require.False(t, h.ComparePassword("not-a-hash", "Sup3r!secret"))

	// Same input, different salt
	again, err := h.HashPassword("Sup3r!secret")
	require.NoError(t, err)
	require.NotEqual(t, hash, again)
}

func TestNewPasswordHasher_InvalidCost(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	require.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	require.Equal(t, 12, NewPasswordHasher(12).cost)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{
			name:     "Valid",
			password: "Str0ng!Pass",
			want:     nil,
		},
		{
			name:     "Short",
			password: "short",
			want:     []string{ViolationMinLength, ViolationUpper, ViolationNumber, ViolationSpecial},
		},
		{
			name:     "Empty",
			password: "",
			want:     []string{ViolationMinLength, ViolationUpper, ViolationLower, ViolationNumber, ViolationSpecial},
		},
		{
			name:     "Missing Symbol",
			password: "Password123",
			want:     []string{ViolationSpecial},
		},
		{
			name:     "Symbol Outside Set",
			password: "Password123€",
			want:     []string{ViolationSpecial},
		},
		{
			name:     "Only Lowercase And Digits",
			password: "abcdefgh1",
			want:     []string{ViolationUpper, ViolationSpecial},
		},
		{
			name:     "Longer Than Bcrypt Accepts",
			password: "Str0ng!Pass" + strings.Repeat("x", 62),
			want:     []string{ViolationMaxLength},
		},
		{
			name:     "Exactly Bcrypt Limit",
			password: "Str0ng!Pass" + strings.Repeat("x", 61),
			want:     nil,
		},
		{
			name:     "Multibyte Over Limit",
			password: "Str0ng!Pass" + strings.Repeat("é", 31),
			want:     []string{ViolationMaxLength},
		},
		{
			name:     "Backslash Counts",
			password: `Abcdefg1\`,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ValidatePassword(tt.password))
		})
	}
}
