package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/users-api/internal/config"
	"github.com/deppfellow/users-api/internal/lib/health"
	"github.com/deppfellow/users-api/internal/middleware"
	"github.com/deppfellow/users-api/internal/model"
	"github.com/deppfellow/users-api/internal/repository/repotest"
	"github.com/deppfellow/users-api/internal/server"
	"github.com/deppfellow/users-api/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	echo     *echo.Echo
	server   *server.Server
	provider *repotest.Provider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{Primary: config.Primary{Env: "test"}},
		Logger: &logger,
		Health: health.NewChecker("test", time.Second),
	}
	provider := repotest.NewProvider()
	h := NewUserHandler(s, service.NewUserService(provider, nil))

	mw := middleware.NewMiddlewares(s)
	e := echo.New()
	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler
	e.Use(middleware.RequestID(), mw.ContextEnhancer.EnhanceContext())

	e.GET("/users", Handle(h.Handler, h.ListUsers, http.StatusOK, func() *model.ListUsersRequest {
		return &model.ListUsersRequest{}
	}))
	e.POST("/users", Handle(h.Handler, h.CreateUser, http.StatusCreated, func() *model.CreateUserRequest {
		return &model.CreateUserRequest{}
	}))
	e.GET("/users/:id", Handle(h.Handler, h.GetUser, http.StatusOK, func() *model.UserIDRequest {
		return &model.UserIDRequest{}
	}))
	e.PATCH("/users/:id", Handle(h.Handler, h.UpdateUser, http.StatusOK, func() *model.UpdateUserRequest {
		return &model.UpdateUserRequest{}
	}))
	e.DELETE("/users/:id", Handle(h.Handler, h.DeleteUser, http.StatusOK, func() *model.UserIDRequest {
		return &model.UserIDRequest{}
	}))

	return &testEnv{echo: e, server: s, provider: provider}
}

func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func TestUserHandler_CreateReturns201(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/users", `{"email":"alice@example.com","name":"Alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"email":"alice@example.com","name":"Alice"}`, rec.Body.String())
}

func TestUserHandler_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/users", `{"email":"alice@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"error":"Validation failed","errors":[{"field":"name","error":"is required"}]}`,
		rec.Body.String())

	// Validation failures never reach the store.
	assert.Zero(t, env.provider.Acquired())
}

func TestUserHandler_NotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := env.do(method, "/users/999", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String(), method)
	}

	rec := env.do(http.MethodPatch, "/users/999", `{"name":"X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())
}

func TestUserHandler_NonIntegerID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, env.provider.Acquired())
}

func TestUserHandler_StoreFailures(t *testing.T) {
	tests := []struct {
		method, path, body, message string
	}{
		{http.MethodGet, "/users", "", "Failed to fetch users"},
		{http.MethodPost, "/users", `{"email":"a@x.io","name":"A"}`, "Failed to create user"},
		{http.MethodGet, "/users/1", "", "Failed to fetch user"},
		{http.MethodPatch, "/users/1", `{"name":"B"}`, "Failed to update user"},
		{http.MethodDelete, "/users/1", "", "Failed to delete user"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			env := newTestEnv(t)
			env.provider.FailWith(errors.New("connection refused"))

			rec := env.do(tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.message+`"}`, rec.Body.String())
			assert.Equal(t, 1, env.provider.Acquired())
			assert.Zero(t, env.provider.Outstanding())
		})
	}
}

func TestUserHandler_DeleteBody(t *testing.T) {
	env := newTestEnv(t)
	env.provider.Seed(model.User{ID: 4, Email: "d@x.io", Name: "Dee"})

	rec := env.do(http.MethodDelete, "/users/4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"message":"User deleted successfully","user":{"id":4,"email":"d@x.io","name":"Dee"}}`,
		rec.Body.String())
}

func TestUserHandler_EmptyListIsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandle_ConcurrentRequestsDoNotSharePayload(t *testing.T) {
	env := newTestEnv(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := env.do(http.MethodPost, "/users", `{"email":"c@x.io","name":"C"}`)
			assert.Equal(t, http.StatusCreated, rec.Code)
		}()
	}
	wg.Wait()

	rec := env.do(http.MethodGet, "/users", "")
	var users []model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 20)
	assert.Zero(t, env.provider.Outstanding())
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)
	h := NewHealthHandler(env.server)
	env.echo.GET("/status", h.CheckHealth)

	env.server.Health.Register("database", func(context.Context) error { return nil }, true)
	env.server.Health.Register("redis", func(context.Context) error { return errors.New("down") }, false)

	rec := env.do(http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report health.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, health.StatusHealthy, report.Status)
	assert.Equal(t, "test", report.Environment)
	assert.Equal(t, health.StatusUnhealthy, report.Checks["redis"].Status)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	env := newTestEnv(t)
	env.echo.GET("/status", NewHealthHandler(env.server).CheckHealth)
	env.server.Health.Register("database", func(context.Context) error { return errors.New("down") }, true)

	rec := env.do(http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOpenAPIHandler(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openapi.html"), []byte("<html>docs</html>"), 0o600))

	h := NewOpenAPIHandler(env.server)
	h.staticDir = dir
	env.echo.GET("/docs", h.ServeOpenAPIUI)

	rec := env.do(http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "docs")

	h.staticDir = filepath.Join(dir, "missing")
	rec = env.do(http.MethodGet, "/docs", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
