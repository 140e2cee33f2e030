package routes

import (
	handlers "bringalong/internal/handlers/shared"
	"bringalong/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}
}

func SetupUserRoutes(r *gin.RouterGroup, userHandler *handlers.UserHandler, jwtSecret string) {
	users := r.Group("/users/me")
	users.Use(middleware.AuthRequired(jwtSecret))
	{
		users.GET("", userHandler.GetProfile)
		users.PUT("", userHandler.UpdateProfile)
		users.POST("/avatar", userHandler.UploadAvatar)
	}
}
