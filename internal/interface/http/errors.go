package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/oidc"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
	"github.com/oksasatya/go-ddd-blog/pkg/response"
	"github.com/oksasatya/go-ddd-blog/pkg/validation"
)

// writeError maps a service error onto the response envelope.
func writeError(c *gin.Context, logger *logrus.Logger, loginURL string, err error) {
	if _, ok := errs.IsValidation(err); ok {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	switch {
	case errors.Is(err, errs.ErrAuthenticationAbsent):
		middleware.AbortUnauthenticated(c, loginURL)
	case errors.Is(err, errs.ErrAuthorizationDenied):
		response.Error[any](c, http.StatusForbidden, "not authorized", nil)
	case errors.Is(err, errs.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, redisstore.ErrInvalidRefresh):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrEmailUnverified):
		response.Error[any](c, http.StatusForbidden, "email not verified", nil)
	case errors.Is(err, errs.ErrAuthInfrastructure):
		helpers.LogError(logger, "session store failure", err, logrus.Fields{"path": c.FullPath()})
		response.Error[any](c, http.StatusServiceUnavailable, "session store unavailable", nil)
	case errors.Is(err, oidc.ErrProviderDisabled):
		response.Error[any](c, http.StatusServiceUnavailable, "sign-in unavailable", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		response.Error[any](c, http.StatusServiceUnavailable, "request cancelled", nil)
	default:
		helpers.LogError(logger, "request failed", err, logrus.Fields{"path": c.FullPath(), "request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
