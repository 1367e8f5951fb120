// Package model defines the User resource and the request/response payloads of the users API.
package model

import "github.com/deppfellow/users-api/internal/validation"

// User is a stored user. ID is assigned by the database and never changes.
type User struct {
	ID    int64  `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`
}

// ListUsersRequest is the (empty) payload of GET /users.
type ListUsersRequest struct{}

func (r *ListUsersRequest) Validate() error {
	return nil
}

// CreateUserRequest is the body of POST /users.
//
// Email is only required to be non-empty; its format is not checked.
type CreateUserRequest struct {
	Email string `json:"email" validate:"required"`
	Name  string `json:"name" validate:"required"`
}

func (r *CreateUserRequest) Validate() error {
	return validation.Struct(r)
}

// UserIDRequest carries the {id} path parameter.
type UserIDRequest struct {
	ID int64 `param:"id" json:"-"`
}

func (r *UserIDRequest) Validate() error {
	return validation.Struct(r)
}

// UpdateUserRequest is the body of PATCH /users/{id}.
//
// Absent fields are nil and left untouched; a supplied field must not be empty.
type UpdateUserRequest struct {
	ID    int64   `param:"id" json:"-"`
	Email *string `json:"email" validate:"omitnil,min=1"`
	Name  *string `json:"name" validate:"omitnil,min=1"`
}

func (r *UpdateUserRequest) Validate() error {
	return validation.Struct(r)
}

// HasChanges reports whether any field was supplied.
func (r *UpdateUserRequest) HasChanges() bool {
	return r.Email != nil || r.Name != nil
}

// DeleteUserResponse is returned by DELETE /users/{id}.
type DeleteUserResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// UserDeletedMessage is the Message of every successful DeleteUserResponse.
const UserDeletedMessage = "User deleted successfully"

// NewDeleteUserResponse wraps the removed user.
func NewDeleteUserResponse(user User) DeleteUserResponse {
	return DeleteUserResponse{
		Message: UserDeletedMessage,
		User:    user,
	}
}

var (
	_ validation.Validatable = (*ListUsersRequest)(nil)
	_ validation.Validatable = (*CreateUserRequest)(nil)
	_ validation.Validatable = (*UserIDRequest)(nil)
	_ validation.Validatable = (*UpdateUserRequest)(nil)
)
