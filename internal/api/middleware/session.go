// Package middleware contains the Gin middleware shared by the API routes
package middleware

import (
	"errors"
	"net/http"

	"contentdesk/internal/auth"
	"contentdesk/internal/models"
	"contentdesk/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextUserKey is the gin context key holding the signed-in *models.User
const ContextUserKey = "user"

type SessionMiddleware struct {
	tokens   *auth.TokenCodec
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewSessionMiddleware(tokens *auth.TokenCodec, userRepo repository.UserRepository, log *zap.Logger) *SessionMiddleware {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionMiddleware{
		tokens:   tokens,
		userRepo: userRepo,
		log:      log,
	}
}

// SessionRequired rejects requests without a valid session cookie and stores
// the signed-in user in the context.
func (m *SessionMiddleware) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.SessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "not authenticated"})
			return
		}

		claims, ok := m.tokens.Verify(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid session"})
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid session"})
				return
			}
			m.log.Error("failed to load session user", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load session"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by SessionRequired
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
