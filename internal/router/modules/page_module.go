package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-blog/internal/interface/http"
)

// PageModule serves CMS content: GET /home, GET /pages/:slug
type PageModule struct {
	Handler *handlers.PageHandler
}

func NewPageModule(h *handlers.PageHandler) *PageModule { return &PageModule{Handler: h} }

func (m *PageModule) Register(rg *gin.RouterGroup) {
	rg.GET("/home", m.Handler.Home)
	rg.GET("/pages/:slug", m.Handler.Page)
}
