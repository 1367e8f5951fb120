package config

import (
	"fmt"
	"time"
)

// ObservabilityConfig groups logging, APM and health-check settings.
//
// ServiceName and Environment are always overwritten by LoadConfig so every
// log line and trace is labelled consistently.
type ObservabilityConfig struct {
	ServiceName  string             `koanf:"service_name"`
	Environment  string             `koanf:"environment"`
	Logging      LoggingConfig      `koanf:"logging"`
	NewRelic     NewRelicConfig     `koanf:"new_relic"`
	HealthChecks HealthChecksConfig `koanf:"health_checks"`
}

// LoggingConfig controls the zerolog logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" or "console". JSON is only used in production.
	Format string `koanf:"format"`

	// SlowQueryThreshold flags SQL statements slower than this in the trace log.
	// Parsed from duration strings such as "100ms".
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`
}

// NewRelicConfig configures the New Relic agent. An empty LicenseKey disables it.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
	DebugLogging              bool   `koanf:"debug_logging"`
}

// Enabled reports whether a license key is configured.
func (n NewRelicConfig) Enabled() bool {
	return n.LicenseKey != ""
}

// HealthChecksConfig controls the periodic dependency monitor.
type HealthChecksConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
	Timeout  time.Duration `koanf:"timeout"`

	// Checks names the probes to run on schedule ("database", "redis").
	Checks []string `koanf:"checks"`
}

// DefaultObservabilityConfig returns the settings used when nothing is configured.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: ServiceName,
		Environment: "development",
		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		NewRelic: NewRelicConfig{
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
			// Agent debug output would interleave with the JSON logs.
			DebugLogging: false,
		},
		HealthChecks: HealthChecksConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  5 * time.Second,
			Checks:   []string{"database", "redis"},
		},
	}
}

// observabilityDefaults flattens DefaultObservabilityConfig into koanf keys so
// partially set USERAPI_OBSERVABILITY__* variables merge on top of the defaults.
func observabilityDefaults() map[string]interface{} {
	d := DefaultObservabilityConfig()
	return map[string]interface{}{
		"observability.service_name":                          d.ServiceName,
		"observability.environment":                           d.Environment,
		"observability.logging.level":                         d.Logging.Level,
		"observability.logging.format":                        d.Logging.Format,
		"observability.logging.slow_query_threshold":          d.Logging.SlowQueryThreshold.String(),
		"observability.new_relic.app_log_forwarding_enabled":  d.NewRelic.AppLogForwardingEnabled,
		"observability.new_relic.distributed_tracing_enabled": d.NewRelic.DistributedTracingEnabled,
		"observability.new_relic.debug_logging":               d.NewRelic.DebugLogging,
		"observability.health_checks.enabled":                 d.HealthChecks.Enabled,
		"observability.health_checks.interval":                d.HealthChecks.Interval.String(),
		"observability.health_checks.timeout":                 d.HealthChecks.Timeout.String(),
		"observability.health_checks.checks":                  d.HealthChecks.Checks,
	}
}

// Validate checks the rules struct tags can't express.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	if c.Logging.SlowQueryThreshold < 0 {
		return fmt.Errorf("logging slow_query_threshold must be non-negative")
	}

	if c.HealthChecks.Enabled {
		if c.HealthChecks.Interval < time.Second {
			return fmt.Errorf("health_checks interval must be at least 1s, got %s", c.HealthChecks.Interval)
		}
		if c.HealthChecks.Timeout < time.Second {
			return fmt.Errorf("health_checks timeout must be at least 1s, got %s", c.HealthChecks.Timeout)
		}
	}

	return nil
}

// GetLogLevel returns the configured level, falling back to an environment default.
func (c *ObservabilityConfig) GetLogLevel() string {
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	if c.IsProduction() {
		return "info"
	}
	return "debug"
}

// IsProduction reports whether the service runs in production.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}
