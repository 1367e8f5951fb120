package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/users-api/internal/lib/health"
	"github.com/deppfellow/users-api/internal/middleware"
	"github.com/deppfellow/users-api/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth runs every registered dependency probe. It answers 200 when all
// required probes pass and 503 otherwise; optional probes (redis) are reported
// but never fail the check.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	report := h.server.Health.Run(c.Request().Context())

	for name, result := range report.Checks {
		if result.Status == health.StatusHealthy {
			logger.Debug().
				Str("check", name).
				Dur("response_time", result.Duration).
				Msg("health check passed")
			continue
		}
		logger.Error().
			Str("check", name).
			Str("error", result.Error).
			Dur("response_time", result.Duration).
			Msg("health check failed")
	}

	health.RecordFailures(h.server.LoggerService, "health_check", report)

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")
	}

	if err := c.JSON(status, report); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}
