package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is the lifetime of a session token
const DefaultSessionTTL = 7 * 24 * time.Hour

// ErrInvalidToken indicates the token is invalid
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims identifies the signed-in user
type SessionClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies session tokens with HMAC-SHA256
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec creates a codec for the given signing secret
func NewTokenCodec(secret string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	return &TokenCodec{secret: []byte(secret), now: time.Now}, nil
}

// Sign issues a token for userID and role that expires after ttl
func (c *TokenCodec) Sign(userID uuid.UUID, role string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	now := c.now()

	claims := &SessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify returns the claims of a valid token. Malformed, tampered, expired or
// non-HMAC tokens all yield false.
func (c *TokenCodec) Verify(tokenString string) (*SessionClaims, bool) {
	if tokenString == "" {
		return nil, false
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid || claims.UserID == uuid.Nil {
		return nil, false
	}

	return claims, true
}
