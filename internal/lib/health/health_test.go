package health

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	eventType string
	params    map[string]interface{}
}

type fakeRecorder struct {
	events []recordedEvent
}

func (f *fakeRecorder) RecordEvent(eventType string, params map[string]interface{}) {
	f.events = append(f.events, recordedEvent{eventType: eventType, params: params})
}

func ok(context.Context) error { return nil }

func failing(msg string) Probe {
	return func(context.Context) error { return errors.New(msg) }
}

func TestChecker_AllHealthy(t *testing.T) {
	c := NewChecker("test", time.Second)
	c.Register("database", ok, true)
	c.Register("redis", ok, false)

	report := c.Run(context.Background())
	assert.True(t, report.Healthy())
	assert.Equal(t, "test", report.Environment)
	assert.Len(t, report.Checks, 2)
	assert.Equal(t, []string{"database", "redis"}, c.Names())
}

func TestChecker_OptionalFailureStaysHealthy(t *testing.T) {
	c := NewChecker("test", time.Second)
	c.Register("database", ok, true)
	c.Register("redis", failing("connection refused"), false)

	report := c.Run(context.Background())
	assert.True(t, report.Healthy())
	assert.Equal(t, StatusUnhealthy, report.Checks["redis"].Status)
	assert.Equal(t, "connection refused", report.Checks["redis"].Error)
}

func TestChecker_RequiredFailure(t *testing.T) {
	c := NewChecker("test", time.Second)
	c.Register("database", failing("down"), true)

	report := c.Run(context.Background())
	assert.False(t, report.Healthy())
	assert.Equal(t, StatusUnhealthy, report.Status)
}

func TestChecker_ProbeTimeout(t *testing.T) {
	c := NewChecker("test", 20*time.Millisecond)
	c.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, true)

	report := c.Run(context.Background())
	assert.False(t, report.Healthy())
	assert.Contains(t, report.Checks["slow"].Error, context.DeadlineExceeded.Error())
}

func TestChecker_RunSubset(t *testing.T) {
	c := NewChecker("test", time.Second)
	c.Register("database", ok, true)
	c.Register("redis", failing("down"), true)

	report := c.Run(context.Background(), "database", "unknown")
	assert.True(t, report.Healthy())
	assert.Len(t, report.Checks, 1)
}

func TestRecordFailures(t *testing.T) {
	c := NewChecker("test", time.Second)
	c.Register("database", failing("down"), true)
	c.Register("redis", ok, false)

	rec := &fakeRecorder{}
	RecordFailures(rec, "health_check", c.Run(context.Background()))

	require.Len(t, rec.events, 2)
	assert.Equal(t, "database", rec.events[0].params["check_type"])
	assert.Equal(t, "overall", rec.events[1].params["check_type"])

	// nil recorder is allowed
	RecordFailures(nil, "health_check", c.Run(context.Background()))
}

func TestMonitor_RunOnceLogsAndRecords(t *testing.T) {
	c := NewChecker("test", time.Second)
	c.Register("database", failing("down"), true)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	rec := &fakeRecorder{}

	m := NewMonitor(c, time.Second, nil, &logger, rec)
	m.RunOnce()

	assert.Contains(t, buf.String(), "health check failed")
	assert.Len(t, rec.events, 2)
}

func TestMonitor_StartStop(t *testing.T) {
	logger := zerolog.Nop()
	m := NewMonitor(NewChecker("test", time.Second), time.Hour, nil, &logger, nil)

	require.NoError(t, m.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.Stop(ctx)
}
