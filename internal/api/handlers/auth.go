package handlers

import (
	"net/http"

	"contentdesk/internal/api/middleware"
	"contentdesk/internal/auth"
	"contentdesk/internal/models"
	"contentdesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles sign-in, sign-out and session introspection
type AuthHandler struct {
	login        *service.LoginService
	account      *service.AccountService
	secureCookie bool
	log          *zap.Logger
}

// NewAuthHandler creates a new authentication handler with the given dependencies
func NewAuthHandler(
	login *service.LoginService,
	account *service.AccountService,
	secureCookie bool,
	log *zap.Logger,
) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		login:        login,
		account:      account,
		secureCookie: secureCookie,
		log:          log,
	}
}

// Login godoc
// @Summary Start sign-in
// @Description Checks the password and emails a one-time code. The code must be submitted to /auth/verify.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse "Code sent"
// @Failure 400 {object} models.ErrorResponse "Invalid request format"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Failure 429 {object} models.ErrorResponse "Too many attempts"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	sessionID, err := h.login.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err, "failed to process login")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		RequiresVerification: true,
		SessionID:            sessionID,
	})
}

// Verify godoc
// @Summary Complete sign-in
// @Description Verifies the emailed code and sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.VerifyCodeRequest true "Login session and code"
// @Success 200 {object} models.VerifyLoginResponse "Signed in"
// @Header 200 {string} Set-Cookie "session cookie"
// @Failure 400 {object} models.ErrorResponse "Code expired or invalid"
// @Failure 401 {object} models.ErrorResponse "Invalid or expired session"
// @Failure 429 {object} models.ErrorResponse "Too many attempts"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req models.VerifyCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.login.Verify(c.Request.Context(), req.SessionID, req.Code)
	if err != nil {
		respondError(c, h.log, err, "failed to verify code")
		return
	}

	c.Header("Set-Cookie", auth.SessionCookie(result.Token, result.MaxAge, h.secureCookie))
	c.JSON(http.StatusOK, models.VerifyLoginResponse{
		OK:                 true,
		MustChangePassword: result.User.MustChangePassword,
	})
}

// Logout godoc
// @Summary Sign out
// @Description Clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.Header("Set-Cookie", auth.ClearSessionCookie(h.secureCookie))
	c.JSON(http.StatusOK, models.SuccessResponse{OK: true})
}

// Me godoc
// @Summary Current user
// @Description Returns the signed-in user
// @Tags auth
// @Produce json
// @Security SessionCookie
// @Success 200 {object} models.MeResponse
// @Failure 401 {object} models.ErrorResponse "Not authenticated"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "not authenticated"})
		return
	}

	user, err := h.account.Me(c.Request.Context(), current.ID)
	if err != nil {
		respondError(c, h.log, err, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, models.MeResponse{
		ID:                 user.ID,
		Email:              user.Email,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
		EmailVerified:      user.EmailVerified,
	})
}
