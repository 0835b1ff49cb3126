package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-blog/pkg/response"
	"github.com/oksasatya/go-ddd-blog/pkg/validation"
)

type UserHandler struct {
	Svc      *application.UserService
	Logger   *logrus.Logger
	LoginURL string
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger, loginURL string) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, LoginURL: loginURL}
}

type updateProfileRequest struct {
	Name string `json:"name" form:"name"`
}

func profileBody(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"image":      u.Image,
		"role":       u.Role.String(),
		"created_at": u.CreatedAt,
	}
}

func (h *UserHandler) PublicProfile(c *gin.Context) {
	p, err := h.Svc.PublicProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, h.LoginURL, err)
		return
	}
	response.Success(c, http.StatusOK, p, "user", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.Profile(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		writeError(c, h.Logger, h.LoginURL, err)
		return
	}
	response.Success(c, http.StatusOK, profileBody(u), "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.IdentityFrom(c), application.UpdateProfileInput{Name: req.Name})
	if err != nil {
		writeError(c, h.Logger, h.LoginURL, err)
		return
	}
	response.Success(c, http.StatusOK, profileBody(u), "profile updated", nil)
}

func (h *UserHandler) AdminDashboard(c *gin.Context) {
	stats, err := h.Svc.AdminDashboard(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		writeError(c, h.Logger, h.LoginURL, err)
		return
	}
	response.Success(c, http.StatusOK, stats, "admin dashboard", nil)
}
