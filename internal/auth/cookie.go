package auth

import (
	"strconv"
	"strings"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "session"

// CookieOptions are the attributes rendered after name=value
type CookieOptions struct {
	// MaxAge in seconds; nil omits the attribute
	MaxAge   *int
	Path     string
	HTTPOnly bool
	Secure   bool
}

// BuildCookie renders a Set-Cookie header value. SameSite=Lax is always set.
func BuildCookie(name, value string, opts CookieOptions) string {
	path := opts.Path
	if path == "" {
		path = "/"
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(value)
	if opts.MaxAge != nil {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(*opts.MaxAge))
	}
	b.WriteString("; Path=")
	b.WriteString(path)
	if opts.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	if opts.Secure {
		b.WriteString("; Secure")
	}
	b.WriteString("; SameSite=Lax")
	return b.String()
}

// SessionCookie renders the session cookie for token with the given lifetime in seconds
func SessionCookie(token string, maxAge int, secure bool) string {
	return BuildCookie(SessionCookieName, token, CookieOptions{
		MaxAge:   &maxAge,
		Path:     "/",
		HTTPOnly: true,
		Secure:   secure,
	})
}

// ClearSessionCookie renders a cookie that makes the browser drop the session
func ClearSessionCookie(secure bool) string {
	return SessionCookie("", 0, secure)
}
