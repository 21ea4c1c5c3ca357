package auth

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   int
		min    int
		max    int
	}{
		{name: "Default Length", length: 0, want: 6, min: 100000, max: 999999},
		{name: "Six Digits", length: 6, want: 6, min: 100000, max: 999999},
		{name: "Four Digits", length: 4, want: 4, min: 1000, max: 9999},
		{name: "Eight Digits", length: 8, want: 8, min: 10000000, max: 99999999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				code, err := GenerateOTP(tt.length)
				require.NoError(t, err)
				require.Len(t, code, tt.want)
				require.NotEqual(t, byte('0'), code[0])

				n, err := strconv.Atoi(code)
				require.NoError(t, err)
				require.GreaterOrEqual(t, n, tt.min)
				require.LessOrEqual(t, n, tt.max)
			}
		})
	}

	_, err := GenerateOTP(19)
	require.Error(t, err)
}

func TestCodesEqual(t *testing.T) {
	require.True(t, CodesEqual("123456", "123456"))
	require.False(t, CodesEqual("123456", "123457"))
	require.False(t, CodesEqual("123456", "0123456"))
	require.False(t, CodesEqual("123456", " 123456"))
	require.False(t, CodesEqual("", ""))
}

func TestNewSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewSessionID()
		require.NoError(t, err)
		require.True(t, IsValidSessionID(id), "generated id %q should be well formed", id)
		require.False(t, seen[id], "session ids must not repeat")
		seen[id] = true
	}
}
