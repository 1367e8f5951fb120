// Package router builds the echo instance: error handler, middleware chain,
// system routes and the user routes declared in UserRoutes.
package router

import (
	"fmt"

	"github.com/deppfellow/users-api/internal/handler"
	"github.com/deppfellow/users-api/internal/middleware"
	"github.com/deppfellow/users-api/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter returns the fully wired HTTP handler for s.
func NewRouter(s *server.Server, h *handler.Handlers) (*echo.Echo, error) {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id feeds tracing and the context logger, and
	// the access log has to wrap the rate limiter to record 429s.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)

	if err := registerUserRoutes(router, h); err != nil {
		return nil, fmt.Errorf("registering user routes: %w", err)
	}

	return router, nil
}
