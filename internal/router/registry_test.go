package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-blog/internal/router/modules"
	"github.com/oksasatya/go-ddd-blog/pkg/metrics"
)

type pingModule struct{}

func (pingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mw")) })
}

func TestRegistryMountsAPIAndRoot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)
	metrics.PostsCreated.Inc()

	r := NewRegistry(e)
	r.Use(func(c *gin.Context) { c.Set("mw", "api"); c.Next() })
	r.Add(pingModule{})
	r.AddRoot(modules.NewMetricsModule(reg))
	r.RegisterAll()

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "api", w.Body.String())

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "blog_posts_created_total")

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
