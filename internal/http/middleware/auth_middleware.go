package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/you/phoneauthsvc/domain"
)

// ContextAuthKey is the gin context key holding the caller's AuthContext.
const ContextAuthKey = "auth"

// AuthMW carries the collaborators for the authentication gates.
type AuthMW struct {
	tokenSvc domain.TokenService
	userRepo domain.UserRepository
}

// NewAuthMW creates new authentication middleware
func NewAuthMW(tokenSvc domain.TokenService, userRepo domain.UserRepository) *AuthMW {
	return &AuthMW{tokenSvc: tokenSvc, userRepo: userRepo}
}

// RequireAuth is the full gate: token signature and expiry plus a live
// account check. A deactivated account is rejected even while its
// access token is still within its lifetime.
func (m *AuthMW) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.verifyRequest(c)
		if !ok {
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
				return
			}
			abort(c, http.StatusInternalServerError, "SERVER_ERROR", "Authentication check failed")
			return
		}
		if !user.IsActive {
			abort(c, http.StatusForbidden, "ACCOUNT_DEACTIVATED", "Account has been deactivated")
			return
		}

		c.Set(ContextAuthKey, &domain.AuthContext{
			UserID: claims.UserID,
			Phone:  claims.Phone,
			Role:   user.Role,
		})
		c.Next()
	}
}

// RequireAuthLight is the cheap gate: token checks only, no account
// lookup. For high-frequency read endpoints that tolerate a token
// lifetime of staleness.
func (m *AuthMW) RequireAuthLight() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.verifyRequest(c)
		if !ok {
			return
		}

		c.Set(ContextAuthKey, &domain.AuthContext{
			UserID: claims.UserID,
			Phone:  claims.Phone,
			Role:   claims.Role,
		})
		c.Next()
	}
}

// RequireRole gates on a closed set of roles. It must run after
// RequireAuth so the role comes from a live account record.
func (m *AuthMW) RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		auth := FromContext(c)
		if auth == nil {
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
			return
		}
		if !allowed[auth.Role] {
			abort(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// FromContext returns the AuthContext set by the gates, or nil.
func FromContext(c *gin.Context) *domain.AuthContext {
	v, exists := c.Get(ContextAuthKey)
	if !exists {
		return nil
	}
	auth, ok := v.(*domain.AuthContext)
	if !ok {
		return nil
	}
	return auth
}

// verifyRequest extracts and verifies the bearer token. On failure it
// writes the response and aborts; callers check the second return.
func (m *AuthMW) verifyRequest(c *gin.Context) (*domain.TokenClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Authorization header required")
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid authorization header format")
		return nil, false
	}

	claims, err := m.tokenSvc.Verify(parts[1])
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			abort(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token expired")
		default:
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
		}
		return nil, false
	}
	return claims, true
}

func abort(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"success": false, "code": code, "error": message})
	c.Abort()
}
