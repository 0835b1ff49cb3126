package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-blog/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
)

// AuthModule wires sign-in routes.
// Public: POST /auth/oidc, POST /refresh
// Session: POST /logout
type AuthModule struct {
	Handler  *handlers.AuthHandler
	RDB      *redis.Client
	LoginURL string
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, loginURL string) *AuthModule {
	return &AuthModule{Handler: h, RDB: rdb, LoginURL: loginURL}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signInLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/oidc", signInLimiter, m.Handler.SignIn)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.RequireAuth(m.LoginURL))
	{
		auth.POST("/logout", m.Handler.Logout)
	}
}
