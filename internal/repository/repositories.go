package repository

import (
	"github.com/deppfellow/users-api/internal/server"
)

// Repositories groups the persistence entry points handed to the service layer.
type Repositories struct {
	Clients ClientProvider
}

// NewRepositories builds the repositories on top of the server's database pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Clients: NewClientProvider(s.DB.SQL),
	}
}
