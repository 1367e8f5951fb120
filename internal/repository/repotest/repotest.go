// Package repotest provides an in-memory repository.ClientProvider for tests
// of the layers above the database.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/deppfellow/users-api/internal/model"
	"github.com/deppfellow/users-api/internal/repository"
)

// Provider stores users in memory and counts how many clients were handed
// out and how many were closed.
type Provider struct {
	mu       sync.Mutex
	users    map[int64]model.User
	nextID   int64
	acquired int
	released int
	failErr  error
	closeErr error
}

// NewProvider returns an empty provider. IDs start at 1.
func NewProvider() *Provider {
	return &Provider{
		users:  make(map[int64]model.User),
		nextID: 1,
	}
}

var _ repository.ClientProvider = (*Provider)(nil)

func (p *Provider) Client(_ context.Context) repository.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquired++
	return &client{p: p}
}

// Seed inserts users as-is and moves the id sequence past them.
func (p *Provider) Seed(users ...model.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range users {
		p.users[u.ID] = u
		if u.ID >= p.nextID {
			p.nextID = u.ID + 1
		}
	}
}

// FailWith makes every store call return err until it is called again with nil.
func (p *Provider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failErr = err
}

// FailClose makes Client.Close return err. The client still counts as released.
func (p *Provider) FailClose(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeErr = err
}

// Acquired is the number of clients handed out.
func (p *Provider) Acquired() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired
}

// Released is the number of clients closed.
func (p *Provider) Released() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

// Outstanding is the number of clients handed out but never closed.
func (p *Provider) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired - p.released
}

type client struct {
	p      *Provider
	closed bool
}

func (c *client) Users() repository.UserStore {
	return &store{c: c}
}

func (c *client) Close() error {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.p.released++
	return c.p.closeErr
}

type store struct {
	c *client
}

// lock takes the provider lock and reports any injected or use-after-close error.
func (s *store) lock() (*Provider, error) {
	p := s.c.p
	p.mu.Lock()
	if s.c.closed {
		return p, repository.ErrClientClosed
	}
	return p, p.failErr
}

func notFound(id int64) error {
	return fmt.Errorf("%w: id %d", repository.ErrUserNotFound, id)
}

func (s *store) FindAll(_ context.Context) ([]model.User, error) {
	p, err := s.lock()
	defer p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(p.users))
	for _, u := range p.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *store) FindByID(_ context.Context, id int64) (model.User, error) {
	p, err := s.lock()
	defer p.mu.Unlock()
	if err != nil {
		return model.User{}, err
	}

	u, ok := p.users[id]
	if !ok {
		return model.User{}, notFound(id)
	}
	return u, nil
}

func (s *store) Create(_ context.Context, req *model.CreateUserRequest) (model.User, error) {
	p, err := s.lock()
	defer p.mu.Unlock()
	if err != nil {
		return model.User{}, err
	}

	u := model.User{ID: p.nextID, Email: req.Email, Name: req.Name}
	p.users[u.ID] = u
	p.nextID++
	return u, nil
}

func (s *store) Update(_ context.Context, req *model.UpdateUserRequest) (model.User, error) {
	p, err := s.lock()
	defer p.mu.Unlock()
	if err != nil {
		return model.User{}, err
	}

	u, ok := p.users[req.ID]
	if !ok {
		return model.User{}, notFound(req.ID)
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	p.users[u.ID] = u
	return u, nil
}

func (s *store) Delete(_ context.Context, id int64) (model.User, error) {
	p, err := s.lock()
	defer p.mu.Unlock()
	if err != nil {
		return model.User{}, err
	}

	u, ok := p.users[id]
	if !ok {
		return model.User{}, notFound(id)
	}
	delete(p.users, id)
	return u, nil
}
