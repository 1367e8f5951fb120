// Package service sits between the handlers and the repositories.
//
// Every service call scopes one repository.Client to itself: acquire, run a
// single store operation, release.
package service

import (
	"github.com/deppfellow/users-api/internal/lib/job"
	"github.com/deppfellow/users-api/internal/repository"
	"github.com/deppfellow/users-api/internal/server"
)

type Services struct {
	User *UserService
	Job  *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	// Keep the interface nil, not a typed nil, when jobs are disabled.
	var welcome WelcomeEmailEnqueuer
	if s.Job != nil {
		welcome = s.Job
	}

	return &Services{
		User: NewUserService(repos.Clients, welcome),
		Job:  s.Job,
	}, nil
}
