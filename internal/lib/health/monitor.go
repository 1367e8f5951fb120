package health

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Monitor runs a Checker periodically and logs failures.
type Monitor struct {
	cron     *cron.Cron
	checker  *Checker
	checks   []string
	interval time.Duration
	timeout  time.Duration
	recorder EventRecorder
	logger   zerolog.Logger
}

// NewMonitor schedules checker every interval, limited to the named checks
// (all when empty). recorder may be nil.
func NewMonitor(checker *Checker, interval time.Duration, checks []string, logger *zerolog.Logger, recorder EventRecorder) *Monitor {
	return &Monitor{
		cron:     cron.New(),
		checker:  checker,
		checks:   checks,
		interval: interval,
		timeout:  interval,
		recorder: recorder,
		logger:   logger.With().Str("component", "health_monitor").Logger(),
	}
}

// Start adds the job and starts the scheduler in its own goroutine.
func (m *Monitor) Start() error {
	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", m.interval), m.RunOnce); err != nil {
		return fmt.Errorf("scheduling health checks: %w", err)
	}
	m.cron.Start()

	m.logger.Info().
		Dur("interval", m.interval).
		Strs("checks", m.checks).
		Msg("health monitor started")
	return nil
}

// Stop stops scheduling and waits for a running check to finish or ctx to expire.
func (m *Monitor) Stop(ctx context.Context) {
	select {
	case <-m.cron.Stop().Done():
	case <-ctx.Done():
	}
	m.logger.Info().Msg("health monitor stopped")
}

// RunOnce runs the configured checks and reports failures.
func (m *Monitor) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.report(m.checker.Run(ctx, m.checks...))
}

func (m *Monitor) report(report Report) {
	for name, result := range report.Checks {
		if result.Status == StatusHealthy {
			m.logger.Debug().
				Str("check", name).
				Dur("response_time", result.Duration).
				Msg("health check passed")
			continue
		}
		m.logger.Error().
			Str("check", name).
			Str("error", result.Error).
			Dur("response_time", result.Duration).
			Msg("health check failed")
	}

	RecordFailures(m.recorder, "scheduled_health_check", report)
}
