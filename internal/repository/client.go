package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Client is a request-scoped handle on the database. It must be closed when the
// request is done, whatever the outcome.
type Client interface {
	Users() UserStore
	Close() error
}

// ClientProvider hands out Clients. Acquiring a client never fails: connection
// problems surface from the first query instead.
type ClientProvider interface {
	Client(ctx context.Context) Client
}

type sqlClientProvider struct {
	db *sqlx.DB
}

// NewClientProvider returns a provider whose clients each pin one connection
// from db's pool, taken on first use and returned on Close.
func NewClientProvider(db *sqlx.DB) ClientProvider {
	return &sqlClientProvider{db: db}
}

func (p *sqlClientProvider) Client(_ context.Context) Client {
	return &connClient{db: p.db}
}

// connClient lazily checks out a dedicated *sqlx.Conn. It is owned by a single
// request, so it is not safe for concurrent use.
type connClient struct {
	db     *sqlx.DB
	conn   *sqlx.Conn
	closed bool
}

func (c *connClient) Users() UserStore {
	return NewUserRepository(c)
}

func (c *connClient) acquire(ctx context.Context) (*sqlx.Conn, error) {
	if c.closed {
		return nil, ErrClientClosed
	}
	if c.conn == nil {
		conn, err := c.db.Connx(ctx)
		if err != nil {
			return nil, err
		}
		c.conn = conn
	}
	return c.conn, nil
}

func (c *connClient) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	conn, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	return conn.GetContext(ctx, dest, query, args...)
}

func (c *connClient) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	conn, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	return conn.SelectContext(ctx, dest, query, args...)
}

// Close returns the connection to the pool. Closing twice is a no-op.
func (c *connClient) Close() error {
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
