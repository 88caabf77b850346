package domain

import "errors"

// Input errors
var (
	ErrInvalidPhone = errors.New("invalid phone number format")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidRole  = errors.New("invalid role")
)

// Rate limit errors
var (
	ErrRateLimited   = errors.New("too many requests")
	ErrIPRateLimited = errors.New("too many requests from this ip")
)

// OTP errors
var (
	ErrOTPInvalid = errors.New("invalid otp code")
	// ErrOTPExpired covers both true expiry and attempt exhaustion so the
	// caller cannot distinguish them.
	ErrOTPExpired = errors.New("otp has expired or too many attempts")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenRevoked   = errors.New("token has been revoked")
)

// Account errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("account has been deactivated")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("insufficient role permissions")
)

// Collaborator lookups
var (
	ErrOTPRecordNotFound = errors.New("otp record not found")
	ErrTestCodeNotFound  = errors.New("test code not found")
)
