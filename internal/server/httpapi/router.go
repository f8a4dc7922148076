package httpapi

import "github.com/gin-gonic/gin"

// NewRouter wires the gin routes. Paths mirror the frontend's expectations:
// everything lives under /api/authentication.
func NewRouter(h *AuthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	authGroup := r.Group("/api/authentication")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.Me)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.GET("/verify-reset-password-token", h.VerifyResetPasswordToken)
		authGroup.POST("/reset-password", h.ResetPassword)
		authGroup.POST("/send-verification-email", h.SendVerificationEmail)
		authGroup.GET("/verify-email", h.VerifyEmail)
	}

	return r
}
