package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/internal/domain/policy"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/oidc"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
	"github.com/oksasatya/go-ddd-blog/pkg/validation"
)

type staticVerifier map[string]*oidc.Claims

func (v staticVerifier) Verify(_ context.Context, raw string) (*oidc.Claims, error) {
	if c, ok := v[raw]; ok {
		return c, nil
	}
	return nil, oidc.ErrProviderDisabled
}

type testServer struct {
	engine   *gin.Engine
	store    *memory.Store
	sessions *redisstore.SessionStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})

	store := memory.NewStore()
	sessions := redisstore.NewSessionStore(rdb, helpers.NewJWTManager("a", "r", time.Hour, 24*time.Hour))
	cache := redisstore.NewViewCache(rdb, time.Minute, nil)
	logger := helpers.NopLogger()

	posts := application.NewPostService(store.Posts(), application.NewPostEventBus(cache), cache, nil, logger)
	users := application.NewUserService(store.Users(), store.Posts(), sessions, logger)
	auth := application.NewAuthService(store.Users(), sessions, staticVerifier{
		"good": {Email: "new@example.com", Name: "Newcomer"},
	}, logger)
	pages := application.NewPageService(nil, posts, logger)

	ph := NewPostHandler(posts, logger, "/login")
	uh := NewUserHandler(users, logger, "/login")
	ah := NewAuthHandler(auth, logger, "", false, "/login")
	pgh := NewPageHandler(pages, logger)

	validation.Init()
	gin.SetMode(gin.TestMode)
	e := gin.New()
	api := e.Group("/api")
	api.Use(middleware.RequestIDMiddleware(), middleware.Session(sessions, logger))
	api.GET("/home", pgh.Home)
	api.GET("/pages/:slug", pgh.Page)
	api.GET("/posts", ph.List)
	api.GET("/posts/search", ph.Search)
	api.GET("/posts/:id", ph.Get)
	api.POST("/posts", ph.Create)
	api.GET("/users/:id", uh.PublicProfile)
	api.POST("/auth/oidc", ah.SignIn)
	api.POST("/refresh", ah.Refresh)
	authed := api.Group("/", middleware.RequireAuth("/login"))
	authed.POST("/logout", ah.Logout)
	authed.GET("/profile", uh.GetProfile)
	authed.PUT("/profile", uh.UpdateProfile)
	authed.GET("/contributor", middleware.Authorize(policy.ActionViewContributorDashboard), ph.ContributorDashboard)
	authed.GET("/admin", middleware.Authorize(policy.ActionViewAdminDashboard), uh.AdminDashboard)

	return &testServer{engine: e, store: store, sessions: sessions}
}

// login creates a user with role and returns its access cookie.
func (s *testServer) login(t *testing.T, role entity.Role) (*entity.User, *http.Cookie) {
	t.Helper()
	ctx := context.Background()
	u, err := s.store.Users().UpsertByEmail(ctx, &entity.User{Email: string(role) + "@example.com", Name: role.Title(), Role: role})
	require.NoError(t, err)
	pair, err := s.sessions.Create(ctx, u)
	require.NoError(t, err)
	return u, &http.Cookie{Name: helpers.AccessCookie, Value: pair.AccessToken}
}

type envelope struct {
	Status  int               `json:"status"`
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    map[string]any    `json:"meta"`
	Error   map[string]string `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) postCount(t *testing.T) int {
	n, err := s.store.Posts().Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestCreatePost_Contributor(t *testing.T) {
	s := newTestServer(t)
	u, cookie := s.login(t, entity.RoleContributor)

	w, _ := s.do(t, http.MethodGet, "/api/posts", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/posts", map[string]string{"title": " Hello ", "details": "World"}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var created entity.Post
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "Hello", created.Title)
	require.Equal(t, u.ID, created.UserID)
	require.Equal(t, "/api/posts/"+created.ID, w.Header().Get("Location"))

	w, env = s.do(t, http.MethodGet, "/api/posts", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []entity.PostWithOwner
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	require.Equal(t, created.ID, list[0].ID)
	require.Equal(t, "Contributor", list[0].Owner.Name)
}

func TestCreatePost_FormSubmission(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.login(t, entity.RoleAdmin)
	form := url.Values{"title": {"From form"}, "details": {"body"}}
	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, 1, s.postCount(t))
}

func TestCreatePost_Anonymous(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodPost, "/api/posts", map[string]string{"title": "t", "details": "d"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "/login?callbackUrl=%2Fapi%2Fposts", env.Meta["login_url"])
	require.Zero(t, s.postCount(t))
}

type unavailableResolver struct{}

func (unavailableResolver) Resolve(context.Context, string) (*entity.Identity, error) {
	return nil, fmt.Errorf("%w: dial tcp: connection refused", errs.ErrAuthInfrastructure)
}

func TestCreatePost_SessionStoreDown(t *testing.T) {
	store := memory.NewStore()
	logger := helpers.NopLogger()
	posts := application.NewPostService(store.Posts(), application.NewPostEventBus(), nil, nil, logger)
	ph := NewPostHandler(posts, logger, "/login")

	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.POST("/api/posts", middleware.Session(unavailableResolver{}, logger), ph.Create)

	post := func(body string) (*httptest.ResponseRecorder, envelope) {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: "still-valid"})
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
		return w, env
	}

	w, env := post(`{"title":"t","details":"d"}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Nil(t, env.Meta["login_url"])

	// validation is still reported first
	w, env = post(`{"title":"","details":"d"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Title cannot be empty", env.Error["title"])

	n, err := store.Posts().Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCreatePost_ReaderForbidden(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.login(t, entity.RoleReader)
	w, _ := s.do(t, http.MethodPost, "/api/posts", map[string]string{"title": "t", "details": "d"}, cookie)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Zero(t, s.postCount(t))
}

func TestCreatePost_EmptyTitle(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.login(t, entity.RoleContributor)
	w, env := s.do(t, http.MethodPost, "/api/posts", map[string]string{"title": "   ", "details": "d"}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Title cannot be empty", env.Error["title"])
	require.Zero(t, s.postCount(t))
}

func TestCreatePost_BadJSON(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.login(t, entity.RoleContributor)
	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPost(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.login(t, entity.RoleContributor)
	_, env := s.do(t, http.MethodPost, "/api/posts", map[string]string{"title": "t", "details": "d"}, cookie)
	var created entity.Post
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, env := s.do(t, http.MethodGet, "/api/posts/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	require.Equal(t, created.ID, detail["id"])
	require.Contains(t, detail["created_ago"], "ago")

	w, _ = s.do(t, http.MethodGet, "/api/posts/does-not-exist", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchRequiresQuery(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/api/posts/search", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, env.Error, "q")

	w, _ = s.do(t, http.MethodGet, "/api/posts/search?q=go", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestDashboards(t *testing.T) {
	s := newTestServer(t)
	_, contrib := s.login(t, entity.RoleContributor)
	_, admin := s.login(t, entity.RoleAdmin)
	_, reader := s.login(t, entity.RoleReader)

	w, _ := s.do(t, http.MethodGet, "/api/contributor", nil, contrib)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/contributor", nil, admin)
	require.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/contributor", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/admin", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var stats application.AdminStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.Equal(t, 1, stats.Users["reader"])
	w, _ = s.do(t, http.MethodGet, "/api/admin", nil, reader)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestProfileFlow(t *testing.T) {
	s := newTestServer(t)
	u, cookie := s.login(t, entity.RoleReader)

	w, env := s.do(t, http.MethodPut, "/api/profile", map[string]string{"name": " "}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Cannot be empty", env.Error["name"])

	w, _ = s.do(t, http.MethodPut, "/api/profile", map[string]string{"name": "Renamed"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/users/"+u.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pub entity.PublicProfile
	require.NoError(t, json.Unmarshal(env.Data, &pub))
	require.Equal(t, "Renamed", pub.Name)

	w, _ = s.do(t, http.MethodGet, "/api/users/nobody", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSignInAndLogout(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/auth/oidc", map[string]string{}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/oidc", map[string]string{"id_token": "good"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var access *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.AccessCookie {
			access = c
		}
	}
	require.NotNil(t, access)

	w, _ = s.do(t, http.MethodGet, "/api/profile", nil, &http.Cookie{Name: access.Name, Value: access.Value})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/logout", nil, &http.Cookie{Name: access.Name, Value: access.Value})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/profile", nil, &http.Cookie{Name: access.Name, Value: access.Value})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/refresh", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHomeWithoutContentSource(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/api/home", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var home application.HomeView
	require.NoError(t, json.Unmarshal(env.Data, &home))
	require.Empty(t, home.Subtitle)
}

func TestPageSlugBinding(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/pages/about", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/pages/about.json", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "must be a valid slug", env.Error["slug"])
}
