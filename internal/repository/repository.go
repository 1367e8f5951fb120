// Package repository handles all interactions with the database.
//
// It contains the raw SQL for the users table behind the UserStore port, and the
// per-request Client that scopes a single pooled connection to one HTTP request.
package repository

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when no user row matches the requested id.
var ErrUserNotFound = errors.New("user not found")

// ErrClientClosed is returned by a Client used after Close.
var ErrClientClosed = errors.New("repository client is closed")

// DBTX is the subset of sqlx shared by *sqlx.DB, *sqlx.Conn and *sqlx.Tx.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}
