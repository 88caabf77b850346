package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/you/phoneauthsvc/domain"
	"github.com/you/phoneauthsvc/internal/http/handlers"
	"github.com/you/phoneauthsvc/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, adh *handlers.AdminHandlers, mw *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/send-otp", ah.SendOTP)
	auth.POST("/verify-otp", ah.VerifyOTP)
	auth.POST("/refresh-token", ah.Refresh)

	me := r.Group("/auth").Use(mw.RequireAuth())
	me.GET("/me", ah.Me)
	me.POST("/logout", ah.Logout)

	adm := r.Group("/admin").Use(mw.RequireAuth(), mw.RequireRole(domain.RoleAdmin))
	adm.GET("/users", adh.ListUsers)
	adm.POST("/users/:id/status", adh.SetUserStatus)

	// Admins may exercise the delivery surface too.
	del := r.Group("/delivery").Use(mw.RequireAuth(), mw.RequireRole(domain.RoleDeliveryStaff, domain.RoleAdmin))
	del.GET("/profile", adh.DeliveryProfile)

	return r
}
