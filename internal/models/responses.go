package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error             string   `json:"error"`
	Details           []string `json:"details,omitempty"`
	RetryAfter        int      `json:"retryAfter,omitempty"`
	AttemptsRemaining *int     `json:"attemptsRemaining,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// LoginResponse is returned after a successful password check
type LoginResponse struct {
	RequiresVerification bool   `json:"requiresVerification"`
	SessionID            string `json:"sessionId"`
}

// VerifyLoginResponse is returned alongside the session cookie
type VerifyLoginResponse struct {
	OK                 bool `json:"ok"`
	MustChangePassword bool `json:"mustChangePassword"`
}

// ForgotPasswordResponse is returned for every well-formed recovery request
type ForgotPasswordResponse struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}
