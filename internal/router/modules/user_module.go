package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/microbloghq/microblog/internal/application"
	"github.com/microbloghq/microblog/internal/container"
	handlers "github.com/microbloghq/microblog/internal/interface/http"
	"github.com/microbloghq/microblog/internal/interface/middleware"
	"github.com/microbloghq/microblog/pkg/helpers"
)

// UserModule wires account and auth handlers into routes.
// Public: POST /api/register, /api/login, /api/refresh,
// /api/auth/reset/init, /api/auth/reset/confirm
// Protected: POST /api/logout, GET/PUT /api/profile,
// POST /api/profile/avatar, GET /api/users/search

type UserModule struct {
	Handler *handlers.UserHandler
	Auth    *handlers.AuthHandler
	Users   *application.UserService
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, a *handlers.AuthHandler, users *application.UserService, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, Auth: a, Users: users, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	// Public with rate limiting
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)
	resetInitLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/auth/reset/init", resetInitLimiter, m.Auth.ResetInit)
	rg.POST("/auth/reset/confirm", resetConfirmLimiter, m.Auth.ResetConfirm)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.LastSeen(m.Users, container.GetLogger()))
	// Private-network traffic (health checks, sidecars) bypasses the IP limit
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
		// Search users via Elasticsearch
		auth.GET("/users/search", m.Handler.Search)
	}
}
