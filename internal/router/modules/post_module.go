package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-blog/internal/domain/policy"
	handlers "github.com/oksasatya/go-ddd-blog/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
)

// PostModule wires post routes.
// Public: GET /posts, GET /posts/search, GET /posts/:id
// Session: POST /posts (contributor or admin), GET /contributor (contributor only)
type PostModule struct {
	Handler  *handlers.PostHandler
	RDB      *redis.Client
	LoginURL string
}

func NewPostModule(h *handlers.PostHandler, rdb *redis.Client, loginURL string) *PostModule {
	return &PostModule{Handler: h, RDB: rdb, LoginURL: loginURL}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	searchLimiter := middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/posts", m.Handler.List)
	rg.GET("/posts/search", searchLimiter, m.Handler.Search)
	rg.GET("/posts/:id", m.Handler.Get)

	// authentication and role are decided by the service after validation
	rg.POST("/posts",
		middleware.RateLimit(m.RDB, 30, time.Minute, middleware.KeyByUserID(), nil),
		m.Handler.Create,
	)

	auth := rg.Group("/")
	auth.Use(middleware.RequireAuth(m.LoginURL))
	{
		auth.GET("/contributor", middleware.Authorize(policy.ActionViewContributorDashboard), m.Handler.ContributorDashboard)
	}
}
