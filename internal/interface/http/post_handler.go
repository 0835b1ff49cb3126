package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-blog/pkg/response"
	"github.com/oksasatya/go-ddd-blog/pkg/validation"
)

type PostHandler struct {
	Svc      *application.PostService
	Logger   *logrus.Logger
	LoginURL string
	Now      func() time.Time
}

func NewPostHandler(svc *application.PostService, logger *logrus.Logger, loginURL string) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger, LoginURL: loginURL, Now: time.Now}
}

// createPostRequest accepts JSON or a submitted form.
type createPostRequest struct {
	Title   string `json:"title" form:"title"`
	Details string `json:"details" form:"details"`
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.Svc.ListPosts(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, h.LoginURL, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "posts", gin.H{"count": len(posts)})
}

func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.Svc.GetPost(c.Request.Context(), c.Param("id"), h.Now())
	if err != nil {
		writeError(c, h.Logger, h.LoginURL, err)
		return
	}
	response.Success(c, http.StatusOK, post, "post", nil)
}

func (h *PostHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchPosts(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, h.LoginURL, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	post, err := h.Svc.CreatePost(c.Request.Context(), middleware.IdentityFrom(c), application.CreatePostInput{
		Title:   req.Title,
		Details: req.Details,
	})
	if errors.Is(err, errs.ErrAuthenticationAbsent) {
		// the session store failed, so the caller may well be signed in
		if sessErr := middleware.SessionError(c); errors.Is(sessErr, errs.ErrAuthInfrastructure) {
			err = sessErr
		}
	}
	if err != nil {
		writeError(c, h.Logger, h.LoginURL, err)
		return
	}
	c.Header("Location", "/api/posts/"+post.ID)
	response.Success(c, http.StatusCreated, post, "post created", nil)
}

// ContributorDashboard lists the caller's own posts.
func (h *PostHandler) ContributorDashboard(c *gin.Context) {
	posts, err := h.Svc.ListOwnPosts(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		writeError(c, h.Logger, h.LoginURL, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"posts": posts}, "contributor dashboard", gin.H{"count": len(posts)})
}
