package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contentdesk/internal/auth"
	"contentdesk/internal/models"
	"contentdesk/internal/repository/memory"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSessionRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenCodec("test_secret_key")
	require.NoError(t, err)
	otherTokens, err := auth.NewTokenCodec("another_secret")
	require.NoError(t, err)

	users := memory.NewUserRepo()
	user := &models.User{Email: "editor@example.com", PasswordHash: "x", Role: models.RoleEditor}
	require.NoError(t, users.Create(context.Background(), user))

	valid, err := tokens.Sign(user.ID, user.Role, time.Hour)
	require.NoError(t, err)
	foreign, err := otherTokens.Sign(user.ID, user.Role, time.Hour)
	require.NoError(t, err)
	ghost, err := tokens.Sign(uuid.New(), models.RoleEditor, time.Hour)
	require.NoError(t, err)

	m := NewSessionMiddleware(tokens, users, nil)
	router := gin.New()
	router.GET("/me", m.SessionRequired(), func(c *gin.Context) {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, u.Email)
	})

	tests := []struct {
		name       string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{name: "Valid Session", cookie: valid, wantStatus: http.StatusOK, wantBody: "editor@example.com"},
		{name: "No Cookie", cookie: "", wantStatus: http.StatusUnauthorized, wantBody: "not authenticated"},
		{name: "Garbage", cookie: "garbage", wantStatus: http.StatusUnauthorized, wantBody: "invalid session"},
		{name: "Wrong Secret", cookie: foreign, wantStatus: http.StatusUnauthorized, wantBody: "invalid session"},
		{name: "Deleted User", cookie: ghost, wantStatus: http.StatusUnauthorized, wantBody: "invalid session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: tt.cookie})
			}
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestCurrentUser_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentUser(c)
	require.False(t, ok)
}
