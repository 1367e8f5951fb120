// Package health checks the service's dependencies.
//
// A Checker runs named probes (database, redis) with a per-probe timeout. The
// /status endpoint runs it on demand and Monitor runs it on a cron schedule.
package health

import (
	"context"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Probe reports whether one dependency is reachable.
type Probe func(ctx context.Context) error

// EventRecorder records custom APM events. *logger.LoggerService implements it.
type EventRecorder interface {
	RecordEvent(eventType string, params map[string]interface{})
}

// CheckResult is the outcome of a single probe.
type CheckResult struct {
	Status       string        `json:"status"`
	ResponseTime string        `json:"response_time"`
	Error        string        `json:"error,omitempty"`
	Duration     time.Duration `json:"-"`
	Required     bool          `json:"-"`
}

// Report is the outcome of a Checker run.
type Report struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

// Healthy reports whether every required probe passed.
func (r Report) Healthy() bool {
	return r.Status == StatusHealthy
}

type check struct {
	name     string
	probe    Probe
	required bool
}

// Checker runs registered probes. Register everything before the first Run.
type Checker struct {
	environment string
	timeout     time.Duration
	checks      []check
}

func NewChecker(environment string, timeout time.Duration) *Checker {
	return &Checker{
		environment: environment,
		timeout:     timeout,
	}
}

// Register adds a probe. A failing optional probe is reported but doesn't make
// the service unhealthy.
func (c *Checker) Register(name string, probe Probe, required bool) {
	c.checks = append(c.checks, check{name: name, probe: probe, required: required})
}

// Names lists the registered probes in registration order.
func (c *Checker) Names() []string {
	names := make([]string, 0, len(c.checks))
	for _, chk := range c.checks {
		names = append(names, chk.name)
	}
	return names
}

// Run executes the probes named in only, or all of them when only is empty.
// Unknown names are ignored.
func (c *Checker) Run(ctx context.Context, only ...string) Report {
	report := Report{
		Status:      StatusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: c.environment,
		Checks:      make(map[string]CheckResult),
	}

	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = true
	}

	for _, chk := range c.checks {
		if len(wanted) > 0 && !wanted[chk.name] {
			continue
		}

		result := c.runProbe(ctx, chk)
		report.Checks[chk.name] = result
		if result.Status != StatusHealthy && chk.required {
			report.Status = StatusUnhealthy
		}
	}

	return report
}

func (c *Checker) runProbe(ctx context.Context, chk check) CheckResult {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := chk.probe(probeCtx)
	elapsed := time.Since(start)

	result := CheckResult{
		Status:       StatusHealthy,
		ResponseTime: elapsed.String(),
		Duration:     elapsed,
		Required:     chk.required,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

// RecordFailures sends one HealthCheckError event per failed probe, plus an
// "overall" event when the report is unhealthy. recorder may be nil.
func RecordFailures(recorder EventRecorder, operation string, report Report) {
	if recorder == nil {
		return
	}

	for name, result := range report.Checks {
		if result.Status == StatusHealthy {
			continue
		}
		recorder.RecordEvent("HealthCheckError", map[string]interface{}{
			"check_type":       name,
			"operation":        operation,
			"error_type":       name + "_unhealthy",
			"response_time_ms": result.Duration.Milliseconds(),
			"error_message":    result.Error,
		})
	}

	if !report.Healthy() {
		recorder.RecordEvent("HealthCheckError", map[string]interface{}{
			"check_type": "overall",
			"operation":  operation,
			"error_type": "overall_unhealthy",
		})
	}
}
