package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildCookie(t *testing.T) {
	maxAge := 604800

	tests := []struct {
		name string
		opts CookieOptions
		want string
	}{
		{
			name: "Defaults",
			opts: CookieOptions{},
			want: "session=abc; Path=/; SameSite=Lax",
		},
		{
			name: "All Attributes",
			opts: CookieOptions{MaxAge: &maxAge, Path: "/", HTTPOnly: true, Secure: true},
			want: "session=abc; Max-Age=604800; Path=/; HttpOnly; Secure; SameSite=Lax",
		},
		{
			name: "HttpOnly Without Secure",
			opts: CookieOptions{MaxAge: &maxAge, HTTPOnly: true},
			want: "session=abc; Max-Age=604800; Path=/; HttpOnly; SameSite=Lax",
		},
		{
			name: "Custom Path",
			opts: CookieOptions{Path: "/admin", Secure: true},
			want: "session=abc; Path=/admin; Secure; SameSite=Lax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BuildCookie("session", "abc", tt.opts))
		})
	}
}

func TestSessionCookie(t *testing.T) {
	require.Equal(t,
		"session=tok; Max-Age=604800; Path=/; HttpOnly; Secure; SameSite=Lax",
		SessionCookie("tok", 604800, true))
	require.Equal(t,
		"session=; Max-Age=0; Path=/; HttpOnly; SameSite=Lax",
		ClearSessionCookie(false))
}
