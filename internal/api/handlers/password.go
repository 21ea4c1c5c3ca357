package handlers

import (
	"net/http"

	"contentdesk/internal/api/middleware"
	"contentdesk/internal/models"
	"contentdesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgResetRequested = "If an account exists for that email, a verification code has been sent"
	msgCodeResent     = "A new verification code has been sent"
)

// PasswordHandler handles account recovery and password changes
type PasswordHandler struct {
	recovery *service.RecoveryService
	account  *service.AccountService
	log      *zap.Logger
}

func NewPasswordHandler(recovery *service.RecoveryService, account *service.AccountService, log *zap.Logger) *PasswordHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordHandler{
		recovery: recovery,
		account:  account,
		log:      log,
	}
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Emails a reset code when the account exists. The response is the same either way.
// @Tags password
// @Accept json
// @Produce json
// @Param request body models.ForgotPasswordRequest true "Account email"
// @Success 200 {object} models.ForgotPasswordResponse
// @Failure 400 {object} models.ErrorResponse "Invalid request format"
// @Failure 429 {object} models.ErrorResponse "Too many attempts"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/forgot-password [post]
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	sessionID, err := h.recovery.Request(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, h.log, err, "failed to process password reset request")
		return
	}

	c.JSON(http.StatusOK, models.ForgotPasswordResponse{
		OK:        true,
		SessionID: sessionID,
		Message:   msgResetRequested,
	})
}

// ResendCode godoc
// @Summary Resend the reset code
// @Tags password
// @Accept json
// @Produce json
// @Param request body models.ResendCodeRequest true "Reset session"
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} models.ErrorResponse "Invalid or expired session"
// @Failure 429 {object} models.ErrorResponse "Too many attempts"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/forgot-password/resend [post]
func (h *PasswordHandler) ResendCode(c *gin.Context) {
	var req models.ResendCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.recovery.Resend(c.Request.Context(), req.SessionID); err != nil {
		respondError(c, h.log, err, "failed to resend code")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{OK: true, Message: msgCodeResent})
}

// VerifyResetCode godoc
// @Summary Verify the reset code
// @Tags password
// @Accept json
// @Produce json
// @Param request body models.VerifyCodeRequest true "Reset session and code"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse "Code expired or invalid"
// @Failure 401 {object} models.ErrorResponse "Invalid or expired session"
// @Failure 429 {object} models.ErrorResponse "Too many attempts"
// @Router /auth/forgot-password/verify [post]
func (h *PasswordHandler) VerifyResetCode(c *gin.Context) {
	var req models.VerifyCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.recovery.Verify(c.Request.Context(), req.SessionID, req.Code); err != nil {
		respondError(c, h.log, err, "failed to verify code")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{OK: true})
}

// ResetPassword godoc
// @Summary Set a new password
// @Description Requires a reset session whose code has been verified
// @Tags password
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Reset session and new password"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse "Weak password or code not verified"
// @Failure 401 {object} models.ErrorResponse "Invalid or expired session"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/forgot-password/reset [post]
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.recovery.Reset(c.Request.Context(), req.SessionID, req.Password); err != nil {
		respondError(c, h.log, err, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{OK: true})
}

// ChangePassword godoc
// @Summary Change password
// @Description Sets a new password for the signed-in user and clears the must-change flag
// @Tags password
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body models.ChangePasswordRequest true "New password"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse "Weak password"
// @Failure 401 {object} models.ErrorResponse "Not authenticated"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/change-password [post]
func (h *PasswordHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "not authenticated"})
		return
	}

	var req models.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.account.ChangePassword(c.Request.Context(), user.ID, req.Password); err != nil {
		respondError(c, h.log, err, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{OK: true})
}
