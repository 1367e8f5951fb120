// Package server composes the application's shared dependencies and owns their lifecycle.
//
// It owns:
//   - configuration and the logger (+ optional New Relic service)
//   - the database pool
//   - the optional Redis client and background job worker
//   - the dependency health checker and its scheduled monitor
//   - the http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/users-api/internal/config"
	"github.com/deppfellow/users-api/internal/database"
	"github.com/deppfellow/users-api/internal/lib/email"
	"github.com/deppfellow/users-api/internal/lib/health"
	"github.com/deppfellow/users-api/internal/lib/job"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/users-api/internal/logger"
)

const redisPingTimeout = 5 * time.Second

// Server is the application container. It is not the HTTP server itself.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService
	DB            *database.Database

	// Redis is nil when no Redis address is configured. Job is also nil when
	// Redis was unreachable at startup.
	Redis *redis.Client
	Job   *job.JobService

	Health *health.Checker

	monitor    *health.Monitor
	httpServer *http.Server
}

// New connects to the database (and Redis when configured), starts the job
// worker and the health monitor, and returns the container.
//
// Redis being unreachable at startup is logged, not fatal: it only backs the
// welcome-email queue, which then stays disabled.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
	}

	if cfg.Redis.Enabled() {
		redisClient, pingErr := newRedisClient(cfg, loggerService)
		server.Redis = redisClient

		if err := server.setupJobs(pingErr); err != nil {
			redisClient.Close()
			db.Close()
			return nil, err
		}
	} else {
		logger.Info().Msg("no redis address configured, background jobs disabled")
	}

	server.Health = server.newHealthChecker()

	hc := cfg.Observability.HealthChecks
	if hc.Enabled {
		server.monitor = health.NewMonitor(server.Health, hc.Interval, hc.Checks, logger, loggerService)
		if err := server.monitor.Start(); err != nil {
			logger.Error().Err(err).Msg("failed to start health monitor")
			server.monitor = nil
		}
	}

	return server, nil
}

// newRedisClient returns the client together with the result of its startup ping.
// The client is returned either way so the health checks can report on it.
func newRedisClient(cfg *config.Config, loggerService *loggerPkg.LoggerService) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	if loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	return redisClient, redisClient.Ping(ctx).Err()
}

// setupJobs starts the job worker unless Redis failed its startup ping, in
// which case jobs stay disabled and Job is nil.
func (s *Server) setupJobs(pingErr error) error {
	if pingErr != nil {
		s.Logger.Error().Err(pingErr).Msg("failed to connect to Redis, background jobs disabled")
		return nil
	}

	s.Job = job.NewJobService(s.Logger, s.Config, email.NewClient(s.Config, s.Logger))
	return s.Job.Start()
}

// newHealthChecker registers the database probe (required) and, when Redis is
// configured, the Redis probe (optional).
func (s *Server) newHealthChecker() *health.Checker {
	checker := health.NewChecker(s.Config.Primary.Env, s.Config.Observability.HealthChecks.Timeout)

	checker.Register("database", s.DB.Ping, true)

	if s.Redis != nil {
		checker.Register("redis", func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}, false)
	}

	return checker
}

// SetupHTTPServer configures the http.Server around handler. Timeouts come from
// config, in seconds.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start listens and blocks until the server is shut down. A graceful shutdown
// returns nil.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires, then stops the monitor
// and job worker and closes Redis and the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.monitor != nil {
		s.monitor.Stop(ctx)
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Error().Err(err).Msg("failed to close redis client")
		}
	}

	if err := s.DB.Close(); err != nil {
		return errors.Join(shutdownErr, fmt.Errorf("failed to close database connection: %w", err))
	}

	return shutdownErr
}
