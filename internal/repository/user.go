package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/users-api/internal/model"
	"github.com/deppfellow/users-api/internal/sqlerr"
)

// UserStore is the persistence port for users.
type UserStore interface {
	FindAll(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	Create(ctx context.Context, req *model.CreateUserRequest) (model.User, error)
	Update(ctx context.Context, req *model.UpdateUserRequest) (model.User, error)
	Delete(ctx context.Context, id int64) (model.User, error)
}

const userColumns = "id, email, name"

// UserRepository implements UserStore with plain SQL.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

var _ UserStore = (*UserRepository)(nil)

// FindAll returns every user in the order the database yields them.
func (r *UserRepository) FindAll(ctx context.Context) ([]model.User, error) {
	users := make([]model.User, 0)
	if err := r.db.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users"); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", sqlerr.Normalize(err))
	}
	return users, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	if err != nil {
		return model.User{}, wrapUserError(err, "find", id)
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, req *model.CreateUserRequest) (model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user,
		"INSERT INTO users (email, name) VALUES ($1, $2) RETURNING "+userColumns,
		req.Email, req.Name,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", sqlerr.Normalize(err))
	}
	return user, nil
}

// Update applies only the supplied fields. With nothing supplied it returns the
// current row unchanged, so a missing id is still reported as ErrUserNotFound.
func (r *UserRepository) Update(ctx context.Context, req *model.UpdateUserRequest) (model.User, error) {
	if !req.HasChanges() {
		return r.FindByID(ctx, req.ID)
	}

	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)

	if req.Email != nil {
		args = append(args, *req.Email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}
	if req.Name != nil {
		args = append(args, *req.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	args = append(args, req.ID)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), userColumns)

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		return model.User{}, wrapUserError(err, "update", req.ID)
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, "DELETE FROM users WHERE id = $1 RETURNING "+userColumns, id)
	if err != nil {
		return model.User{}, wrapUserError(err, "delete", id)
	}
	return user, nil
}

func wrapUserError(err error, op string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
	}
	return fmt.Errorf("failed to %s user %d: %w", op, id, sqlerr.Normalize(err))
}
