package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewTokenCodec(t *testing.T) {
	_, err := NewTokenCodec("")
	require.Error(t, err)

	c, err := NewTokenCodec("secret")
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestTokenCodec_SignVerify(t *testing.T) {
	c, err := NewTokenCodec("test_secret_key")
	require.NoError(t, err)

	userID := uuid.New()
	token, err := c.Sign(userID, "admin", time.Hour)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	claims, ok := c.Verify(token)
	require.True(t, ok)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "admin", claims.Role)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 2*time.Second)
}

func TestTokenCodec_DefaultTTL(t *testing.T) {
	c, err := NewTokenCodec("test_secret_key")
	require.NoError(t, err)

	token, err := c.Sign(uuid.New(), "editor", 0)
	require.NoError(t, err)

	claims, ok := c.Verify(token)
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(DefaultSessionTTL), claims.ExpiresAt.Time, 2*time.Second)
}

func TestTokenCodec_Rejects(t *testing.T) {
	c, err := NewTokenCodec("test_secret_key")
	require.NoError(t, err)
	other, err := NewTokenCodec("another_secret")
	require.NoError(t, err)

	valid, err := c.Sign(uuid.New(), "editor", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Sign(uuid.New(), "editor", time.Hour)
	require.NoError(t, err)

	past := time.Now().Add(-8 * 24 * time.Hour)
	expiring := &TokenCodec{secret: []byte("test_secret_key"), now: func() time.Time { return past }}
	expired, err := expiring.Sign(uuid.New(), "editor", time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &SessionClaims{
		UserID: uuid.New(),
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{name: "Empty", token: ""},
		{name: "Garbage", token: "not.a.token"},
		{name: "Wrong Secret", token: foreign},
		{name: "Expired", token: expired},
		{name: "Alg None", token: unsigned},
		{name: "Tampered Payload", token: tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, ok := c.Verify(tt.token)
			require.False(t, ok)
			require.Nil(t, claims)
		})
	}
}
