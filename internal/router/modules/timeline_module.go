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

// TimelineModule wires feed and follow handlers into routes.
// Everything under it requires an authenticated session.
// GET /api/timeline, GET /api/explore, POST /api/posts,
// GET /api/users/:username, POST/DELETE /api/users/:username/follow

type TimelineModule struct {
	Handler *handlers.TimelineHandler
	Users   *application.UserService
	JWT     *helpers.JWTManager
}

func NewTimelineModule(h *handlers.TimelineHandler, users *application.UserService, jwt *helpers.JWTManager) *TimelineModule {
	return &TimelineModule{Handler: h, Users: users, JWT: jwt}
}

func (m *TimelineModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.LastSeen(m.Users, container.GetLogger()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	postLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil)
	followLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil)
	{
		auth.GET("/timeline", m.Handler.Home)
		auth.GET("/explore", m.Handler.Explore)
		auth.POST("/posts", postLimiter, m.Handler.CreatePost)
		auth.GET("/users/:username", m.Handler.UserPage)
		auth.POST("/users/:username/follow", followLimiter, m.Handler.Follow)
		auth.DELETE("/users/:username/follow", followLimiter, m.Handler.Unfollow)
	}
}
