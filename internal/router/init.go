package router

import (
	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/internal/container"
	"github.com/oksasatya/go-ddd-blog/internal/domain/event"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/cms"
	pginfra "github.com/oksasatya/go-ddd-blog/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-ddd-blog/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-blog/internal/router/modules"
)

type BlogDeps struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Sessions *redisstore.SessionStore

	PostHandler *handlers.PostHandler
	UserHandler *handlers.UserHandler
	AuthHandler *handlers.AuthHandler
	PageHandler *handlers.PageHandler
}

func contentStore() cms.Store {
	cfg := container.GetConfig()
	if cfg.CMSSource == "gcs" {
		return cms.NewGCSStore(container.GetGCS(), cfg.GCSBucket, cfg.CMSGCSPrefix)
	}
	return cms.NewFileStore(cfg.CMSContentDir)
}

func buildBlogDeps() BlogDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()

	users := pginfra.NewUserRepository(container.GetPGPool())
	posts := pginfra.NewPostRepository(container.GetPGPool())
	sessions := redisstore.NewSessionStore(rdb, container.GetJWT())
	cache := redisstore.NewViewCache(rdb, cfg.PostsCacheTTL, logger)

	subs := []event.Subscriber{cache}
	var searcher application.PostSearcher
	if es := container.GetES(); es != nil {
		index := search.NewPostIndex(es, cfg.ESPostsIndex, posts, logger)
		subs = append(subs, index)
		searcher = index
	}
	if pub := container.GetRabbitPub(); pub != nil {
		subs = append(subs, application.QueueSubscriber{Publisher: pub})
	}
	bus := application.NewPostEventBus(subs...)

	postSvc := application.NewPostService(posts, bus, cache, searcher, logger)
	userSvc := application.NewUserService(users, posts, sessions, logger)
	authSvc := application.NewAuthService(users, sessions, container.GetVerifier(), logger)
	pageSvc := application.NewPageService(contentStore(), postSvc, logger)

	return BlogDeps{
		Users:       users,
		Posts:       posts,
		Sessions:    sessions,
		PostHandler: handlers.NewPostHandler(postSvc, logger, cfg.LoginURL),
		UserHandler: handlers.NewUserHandler(userSvc, logger, cfg.LoginURL),
		AuthHandler: handlers.NewAuthHandler(authSvc, logger, cfg.CookieDomain, cfg.CookieSecure, cfg.LoginURL),
		PageHandler: handlers.NewPageHandler(pageSvc, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildBlogDeps()
	cfg := container.GetConfig()
	rdb := container.GetRedis()

	r.Use(middleware.Session(deps.Sessions, container.GetLogger()))
	r.Add(modules.NewPostModule(deps.PostHandler, rdb, cfg.LoginURL))
	r.Add(modules.NewUserModule(deps.UserHandler, rdb, cfg.LoginURL))
	r.Add(modules.NewAuthModule(deps.AuthHandler, rdb, cfg.LoginURL))
	r.Add(modules.NewPageModule(deps.PageHandler))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
	if reg := container.GetMetricsRegistry(); cfg.MetricsEnabled && reg != nil {
		r.AddRoot(modules.NewMetricsModule(reg))
	}
}
