package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/pkg/response"
	"github.com/oksasatya/go-ddd-blog/pkg/validation"
)

type PageHandler struct {
	Svc    *application.PageService
	Logger *logrus.Logger
}

func NewPageHandler(svc *application.PageService, logger *logrus.Logger) *PageHandler {
	return &PageHandler{Svc: svc, Logger: logger}
}

func (h *PageHandler) Home(c *gin.Context) {
	home, err := h.Svc.Home(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, "", err)
		return
	}
	response.Success(c, http.StatusOK, home, "home", nil)
}

type pageURI struct {
	Slug string `uri:"slug" json:"slug" binding:"required,slug"`
}

func (h *PageHandler) Page(c *gin.Context) {
	var req pageURI
	if err := c.ShouldBindUri(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid slug", validation.ToDetails(err))
		return
	}
	page, err := h.Svc.Page(c.Request.Context(), req.Slug)
	if err != nil {
		writeError(c, h.Logger, "", err)
		return
	}
	response.Success(c, http.StatusOK, page, "page", nil)
}
