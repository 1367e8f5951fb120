package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/deppfellow/users-api/internal/config"
	"github.com/deppfellow/users-api/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWelcomeEmailTask(t *testing.T) {
	task, err := NewWelcomeEmailTask("alice@example.com", "Alice")
	require.NoError(t, err)
	assert.Equal(t, TaskWelcome, task.Type())

	var p WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, WelcomeEmailPayload{To: "alice@example.com", Name: "Alice"}, p)
}

func newTestService() *JobService {
	logger := zerolog.Nop()
	return &JobService{
		logger: &logger,
		email:  email.NewClient(&config.Config{}, &logger),
	}
}

func TestHandleWelcomeEmailTask(t *testing.T) {
	task, err := NewWelcomeEmailTask("alice@example.com", "Alice")
	require.NoError(t, err)

	assert.NoError(t, newTestService().handleWelcomeEmailTask(context.Background(), task))
}

func TestHandleWelcomeEmailTask_BadPayloadSkipsRetry(t *testing.T) {
	task := asynq.NewTask(TaskWelcome, []byte("{not json"))

	err := newTestService().handleWelcomeEmailTask(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
