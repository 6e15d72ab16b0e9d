package router

import (
	"github.com/microbloghq/microblog/internal/application"
	"github.com/microbloghq/microblog/internal/container"
	pginfra "github.com/microbloghq/microblog/internal/infrastructure/postgres"
	handlers "github.com/microbloghq/microblog/internal/interface/http"
	"github.com/microbloghq/microblog/internal/router/modules"
	"github.com/microbloghq/microblog/pkg/helpers"
)

type deps struct {
	UserService     *application.UserService
	TimelineService *application.TimelineService
	UserHandler     *handlers.UserHandler
	AuthHandler     *handlers.AuthHandler
	TimelineHandler *handlers.TimelineHandler
}

func buildDeps() deps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	posts := pginfra.NewPostRepository(pool)
	follows := pginfra.NewFollowRepository(pool)

	userSvc := &application.UserService{
		Repo:         users,
		JWT:          container.GetJWT(),
		GCS:          container.GetGCS(),
		GCSBucket:    cfg.GCSBucket,
		Redis:        container.GetRedis(),
		Logger:       container.GetLogger(),
		ES:           container.GetES(),
		ESUsersIndex: cfg.ESUsersIndex,
		Pub:          container.GetRabbitPub(),
		ResetURL:     cfg.ResetPasswordURL,
	}
	timelineSvc := &application.TimelineService{
		Posts:   posts,
		Follows: follows,
		Users:   users,
		PerPage: cfg.PostsPerPage,
		Logger:  container.GetLogger(),
	}

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	return deps{
		UserService:     userSvc,
		TimelineService: timelineSvc,
		UserHandler:     handlers.NewUserHandler(userSvc, cookies, container.GetLogger()),
		AuthHandler:     handlers.NewAuthHandler(userSvc, container.GetLogger()),
		TimelineHandler: handlers.NewTimelineHandler(timelineSvc, container.GetLogger()),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	d := buildDeps()
	r.Add(modules.NewUserModule(d.UserHandler, d.AuthHandler, d.UserService, container.GetJWT()))
	r.Add(modules.NewTimelineModule(d.TimelineHandler, d.UserService, container.GetJWT()))
}
