package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/you/phoneauthsvc/domain"
	"github.com/you/phoneauthsvc/internal/http/middleware"
)

// AdminHandlers handles the admin-only user management surface.
type AdminHandlers struct {
	userRepo domain.UserRepository
	authSvc  domain.AuthService
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(userRepo domain.UserRepository, authSvc domain.AuthService) *AdminHandlers {
	return &AdminHandlers{userRepo: userRepo, authSvc: authSvc}
}

// SetStatusRequest represents an account activation toggle
type SetStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ListUsers returns all accounts, newest first
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	users, err := h.userRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(users))
	for _, u := range users {
		payload = append(payload, userPayload(u))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"users": payload, "count": len(payload)}})
}

// SetUserStatus toggles an account's active flag. Deactivation also
// revokes the account's refresh tokens so access ends when the current
// access token does.
func (h *AdminHandlers) SetUserStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid user id")
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_INPUT", "is_active is required")
		return
	}

	userID := uint(id)
	if err := h.userRepo.SetActive(c.Request.Context(), userID, *req.IsActive); err != nil {
		respondError(c, err)
		return
	}

	if !*req.IsActive {
		if err := h.authSvc.Logout(c.Request.Context(), userID); err != nil {
			respondError(c, err)
			return
		}
	}

	actor := middleware.FromContext(c)
	if actor != nil {
		log.Printf("USER_STATUS_CHANGED: user_id=%d is_active=%t by=%d", userID, *req.IsActive, actor.UserID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"user_id": userID, "is_active": *req.IsActive},
	})
}

// DeliveryProfile returns the delivery worker's own profile
func (h *AdminHandlers) DeliveryProfile(c *gin.Context) {
	auth := middleware.FromContext(c)
	if auth == nil {
		fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), auth.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": userPayload(user)})
}
