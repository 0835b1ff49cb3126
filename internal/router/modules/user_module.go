package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-blog/internal/domain/policy"
	handlers "github.com/oksasatya/go-ddd-blog/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
)

// UserModule wires profile routes.
// Public: GET /users/:id
// Session: GET /profile, PUT /profile, GET /admin (admin only)
type UserModule struct {
	Handler  *handlers.UserHandler
	RDB      *redis.Client
	LoginURL string
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, loginURL string) *UserModule {
	return &UserModule{Handler: h, RDB: rdb, LoginURL: loginURL}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/users/:id", m.Handler.PublicProfile)

	auth := rg.Group("/")
	auth.Use(middleware.RequireAuth(m.LoginURL))
	auth.Use(middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.GET("/admin", middleware.Authorize(policy.ActionViewAdminDashboard), m.Handler.AdminDashboard)
	}
}
