// Package middleware holds the echo middleware shared by every route: request
// ids, the request-scoped logger, New Relic tracing, rate limiting, CORS,
// access logging, panic recovery and the global error handler.
package middleware

import (
	"github.com/deppfellow/users-api/internal/server"
)

// Middlewares groups the middleware components so the router builds them once.
type Middlewares struct {
	Global          *GlobalMiddlewares
	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware
	RateLimit       *RateLimitMiddleware
}

// NewMiddlewares builds every middleware component. Without a New Relic
// application the tracing middleware is a no-op.
func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
