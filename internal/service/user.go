package service

import (
	"context"
	"time"

	"github.com/deppfellow/users-api/internal/model"
	"github.com/deppfellow/users-api/internal/repository"
	"github.com/rs/zerolog"
)

// WelcomeEmailEnqueuer schedules the welcome email for a new user.
type WelcomeEmailEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, to, name string) error
}

// welcomeEnqueueTimeout bounds how long Create waits on the job queue.
const welcomeEnqueueTimeout = 2 * time.Second

type UserService struct {
	clients repository.ClientProvider
	welcome WelcomeEmailEnqueuer
}

// NewUserService creates a UserService. welcome may be nil.
func NewUserService(clients repository.ClientProvider, welcome WelcomeEmailEnqueuer) *UserService {
	return &UserService{
		clients: clients,
		welcome: welcome,
	}
}

// withClient runs fn against a fresh client and always releases it. A failed
// release is logged with the request logger and otherwise ignored.
func withClient[T any](ctx context.Context, clients repository.ClientProvider, fn func(repository.UserStore) (T, error)) (T, error) {
	client := clients.Client(ctx)
	defer func() {
		if err := client.Close(); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to release database client")
		}
	}()

	return fn(client.Users())
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return withClient(ctx, s.clients, func(users repository.UserStore) ([]model.User, error) {
		return users.FindAll(ctx)
	})
}

func (s *UserService) Get(ctx context.Context, id int64) (model.User, error) {
	return withClient(ctx, s.clients, func(users repository.UserStore) (model.User, error) {
		return users.FindByID(ctx, id)
	})
}

// Create inserts the user, then enqueues a welcome email. Enqueue failures and
// timeouts are logged and don't affect the result.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (model.User, error) {
	user, err := withClient(ctx, s.clients, func(users repository.UserStore) (model.User, error) {
		return users.Create(ctx, req)
	})
	if err != nil {
		return model.User{}, err
	}

	if s.welcome != nil {
		enqueueCtx, cancel := context.WithTimeout(ctx, welcomeEnqueueTimeout)
		defer cancel()

		if err := s.welcome.EnqueueWelcomeEmail(enqueueCtx, user.Email, user.Name); err != nil {
			zerolog.Ctx(ctx).Warn().
				Err(err).
				Int64("user_id", user.ID).
				Msg("failed to enqueue welcome email")
		}
	}

	return user, nil
}

func (s *UserService) Update(ctx context.Context, req *model.UpdateUserRequest) (model.User, error) {
	return withClient(ctx, s.clients, func(users repository.UserStore) (model.User, error) {
		return users.Update(ctx, req)
	})
}

func (s *UserService) Delete(ctx context.Context, id int64) (model.User, error) {
	return withClient(ctx, s.clients, func(users repository.UserStore) (model.User, error) {
		return users.Delete(ctx, id)
	})
}
