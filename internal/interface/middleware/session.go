package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/internal/domain/policy"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
	"github.com/oksasatya/go-ddd-blog/pkg/response"
)

const (
	CtxIdentityKey     = "identity"
	CtxUserIDKey       = "userID"
	ctxSessionErrorKey = "session_error"
)

// SessionResolver maps an access token to the caller, (nil, nil) meaning anonymous.
type SessionResolver interface {
	Resolve(ctx context.Context, credential string) (*entity.Identity, error)
}

// Session resolves the access_token cookie on every request. Anonymous
// callers pass through; a store failure is remembered so RequireAuth can
// answer 503 instead of treating the caller as signed out.
func Session(resolver SessionResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(helpers.AccessCookie)
		id, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			helpers.LogError(logger, "session lookup failed", err, logrus.Fields{"path": c.Request.URL.Path})
			c.Set(ctxSessionErrorKey, err)
		}
		if id != nil {
			c.Set(CtxIdentityKey, id)
			c.Set(CtxUserIDKey, id.UserID)
		}
		c.Next()
	}
}

// IdentityFrom returns the resolved caller, nil when anonymous.
func IdentityFrom(c *gin.Context) *entity.Identity {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*entity.Identity)
	return id
}

// SessionError returns the error the resolver reported for this request, if any.
func SessionError(c *gin.Context) error {
	v, ok := c.Get(ctxSessionErrorKey)
	if !ok {
		return nil
	}
	err, _ := v.(error)
	return err
}

// LoginRedirect builds loginURL?callbackUrl=<path> for the current request.
func LoginRedirect(loginURL string, c *gin.Context) string {
	if loginURL == "" {
		return ""
	}
	u, err := url.Parse(loginURL)
	if err != nil {
		return loginURL
	}
	q := u.Query()
	q.Set("callbackUrl", c.Request.URL.RequestURI())
	u.RawQuery = q.Encode()
	return u.String()
}

// AbortUnauthenticated answers 401 with the sign-in redirect in meta.
func AbortUnauthenticated(c *gin.Context, loginURL string) {
	response.ErrorWithMeta[any](c, http.StatusUnauthorized, "authentication required", nil,
		gin.H{"login_url": LoginRedirect(loginURL, c)})
	c.Abort()
}

// RequireAuth rejects anonymous callers.
func RequireAuth(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c) != nil {
			c.Next()
			return
		}
		if errors.Is(SessionError(c), errs.ErrAuthInfrastructure) {
			response.Error[any](c, http.StatusServiceUnavailable, "session store unavailable", nil)
			c.Abort()
			return
		}
		AbortUnauthenticated(c, loginURL)
	}
}

// Authorize gates a route on a policy action. Use after RequireAuth.
func Authorize(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if policy.Authorize(entity.RoleOf(IdentityFrom(c)), action).Allowed() {
			c.Next()
			return
		}
		response.Error[any](c, http.StatusForbidden, "not authorized", nil)
		c.Abort()
	}
}
