package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/you/phoneauthsvc/domain"
	"github.com/you/phoneauthsvc/internal/http/middleware"
)

// AuthHandlers handles the phone login HTTP surface.
type AuthHandlers struct {
	authSvc domain.AuthService
	otpSvc  domain.OTPService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, otpSvc domain.OTPService) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc, otpSvc: otpSvc}
}

// SendOTPRequest represents an OTP issuance request
type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// VerifyOTPRequest represents an OTP verification request
type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
	Name  string `json:"name,omitempty"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SendOTP handles OTP generation and dispatch
func (h *AuthHandlers) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_PHONE", "Phone number is required")
		return
	}

	result, err := h.otpSvc.Issue(c.Request.Context(), req.Phone, clientIP(c), c.GetHeader("User-Agent"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message":    "OTP sent successfully",
			"expires_in": result.ExpiresIn,
			"rate_limit": gin.H{
				"hourly_remaining": result.HourlyRemaining,
				"daily_remaining":  result.DailyRemaining,
			},
		},
	})
}

// VerifyOTP handles OTP verification and credential issuance
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_OTP", "Phone number and OTP are required")
		return
	}

	creds, err := h.authSvc.VerifyOTP(c.Request.Context(), req.Phone, req.OTP, strings.TrimSpace(req.Name))
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("LOGIN_SUCCESS: user_id=%d phone=%s new_user=%t", creds.User.ID, creds.User.Phone, creds.IsNewUser)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"access_token":  creds.AccessToken,
			"refresh_token": creds.RefreshToken,
			"token_type":    "Bearer",
			"is_new_user":   creds.IsNewUser,
			"user":          userPayload(creds.User),
		},
	})
}

// Refresh handles refresh token rotation
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_TOKEN", "Refresh token is required")
		return
	}

	creds, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"access_token":  creds.AccessToken,
			"refresh_token": creds.RefreshToken,
			"token_type":    "Bearer",
			"user":          userPayload(creds.User),
		},
	})
}

// Me returns the authenticated caller's profile
func (h *AuthHandlers) Me(c *gin.Context) {
	auth := middleware.FromContext(c)
	if auth == nil {
		fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), auth.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": userPayload(user)})
}

// Logout revokes every refresh token of the authenticated caller
func (h *AuthHandlers) Logout(c *gin.Context) {
	auth := middleware.FromContext(c)
	if auth == nil {
		fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), auth.UserID); err != nil {
		respondError(c, err)
		return
	}

	log.Printf("LOGOUT: user_id=%d", auth.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"message": "Logged out successfully"}})
}

func userPayload(user *domain.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"phone":      user.Phone,
		"name":       user.Name,
		"role":       user.Role,
		"language":   user.Language,
		"is_active":  user.IsActive,
		"created_at": user.CreatedAt,
	}
}

// clientIP resolves the caller address behind proxies. Header order
// matches what the edge actually sets.
func clientIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if real := c.GetHeader("X-Real-IP"); real != "" {
		return real
	}
	if cf := c.GetHeader("CF-Connecting-IP"); cf != "" {
		return cf
	}
	return c.ClientIP()
}

// respondError maps service sentinels to transport statuses and stable
// machine-readable codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPhone):
		fail(c, http.StatusBadRequest, "INVALID_PHONE", "Invalid phone number format")
	case errors.Is(err, domain.ErrIPRateLimited):
		fail(c, http.StatusTooManyRequests, "IP_RATE_LIMITED", "Too many requests. Please try again later.")
	case errors.Is(err, domain.ErrRateLimited):
		fail(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many OTP requests. Please try again later.")
	case errors.Is(err, domain.ErrOTPExpired):
		fail(c, http.StatusBadRequest, "OTP_EXPIRED", "OTP has expired or too many attempts. Please request a new one.")
	case errors.Is(err, domain.ErrOTPInvalid):
		fail(c, http.StatusBadRequest, "INVALID_OTP", invalidOTPMessage(err))
	case errors.Is(err, domain.ErrTokenRevoked):
		fail(c, http.StatusUnauthorized, "TOKEN_REVOKED", "Refresh token has been revoked. Please log in again.")
	case errors.Is(err, domain.ErrTokenExpired):
		fail(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Refresh token has expired. Please log in again.")
	case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenMalformed):
		fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid refresh token")
	case errors.Is(err, domain.ErrInvalidInput):
		fail(c, http.StatusBadRequest, "INVALID_INPUT", "Refresh token is required")
	case errors.Is(err, domain.ErrUserInactive):
		fail(c, http.StatusForbidden, "ACCOUNT_DEACTIVATED", "Account has been deactivated")
	case errors.Is(err, domain.ErrUserNotFound):
		fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		log.Printf("REQUEST_FAILED: path=%s error=%v", c.FullPath(), err)
		fail(c, http.StatusInternalServerError, "SERVER_ERROR", "An unexpected error occurred")
	}
}

// invalidOTPMessage surfaces the remaining-attempts hint when the
// service attached one.
func invalidOTPMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return "Invalid OTP. " + msg[idx+2:] + "."
	}
	return "Invalid OTP"
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"success": false, "code": code, "error": message})
}
