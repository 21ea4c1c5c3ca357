package models

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255" example:"editor@example.com"`
	Password string `json:"password" binding:"required,nospaces,max=128" example:"S3cure!pass"`
}

// VerifyCodeRequest submits an emailed code for a login or reset session
type VerifyCodeRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Code      string `json:"code" binding:"required" example:"123456"`
}

// ForgotPasswordRequest starts account recovery
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email,max=255" example:"editor@example.com"`
}

// ResendCodeRequest asks for a fresh reset code
type ResendCodeRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// ResetPasswordRequest completes account recovery
type ResetPasswordRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Password  string `json:"password" example:"N3w!Password"`
}

// ChangePasswordRequest sets a new password for the signed-in user
type ChangePasswordRequest struct {
	Password string `json:"password" example:"N3w!Password"`
}
