package handler

import (
	"errors"

	"github.com/deppfellow/users-api/internal/errs"
	"github.com/deppfellow/users-api/internal/middleware"
	"github.com/deppfellow/users-api/internal/model"
	"github.com/deppfellow/users-api/internal/repository"
	"github.com/deppfellow/users-api/internal/server"
	"github.com/deppfellow/users-api/internal/service"
	"github.com/deppfellow/users-api/internal/sqlerr"
	"github.com/labstack/echo/v4"
)

const userNotFoundMessage = "User not found"

// UserHandler serves the /users routes.
type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		users:   users,
	}
}

func (h *UserHandler) ListUsers(c echo.Context, _ *model.ListUsersRequest) ([]model.User, error) {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return nil, userError(c, err, "Failed to fetch users")
	}
	return users, nil
}

func (h *UserHandler) CreateUser(c echo.Context, req *model.CreateUserRequest) (model.User, error) {
	user, err := h.users.Create(c.Request().Context(), req)
	if err != nil {
		return model.User{}, userError(c, err, "Failed to create user")
	}
	return user, nil
}

func (h *UserHandler) GetUser(c echo.Context, req *model.UserIDRequest) (model.User, error) {
	user, err := h.users.Get(c.Request().Context(), req.ID)
	if err != nil {
		return model.User{}, userError(c, err, "Failed to fetch user")
	}
	return user, nil
}

func (h *UserHandler) UpdateUser(c echo.Context, req *model.UpdateUserRequest) (model.User, error) {
	user, err := h.users.Update(c.Request().Context(), req)
	if err != nil {
		return model.User{}, userError(c, err, "Failed to update user")
	}
	return user, nil
}

func (h *UserHandler) DeleteUser(c echo.Context, req *model.UserIDRequest) (model.DeleteUserResponse, error) {
	user, err := h.users.Delete(c.Request().Context(), req.ID)
	if err != nil {
		return model.DeleteUserResponse{}, userError(c, err, "Failed to delete user")
	}
	return model.NewDeleteUserResponse(user), nil
}

// userError maps a service error to the client response. Only a missing user
// is reported as such; every other failure is logged and answered with a
// generic 500 carrying failMessage.
func userError(c echo.Context, err error, failMessage string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return errs.NewNotFoundError(userNotFoundMessage, nil)
	}

	middleware.GetLogger(c).Error().
		Err(err).
		Str("sql_error_code", string(sqlerr.ErrCode(err))).
		Msg(failMessage)

	return errs.NewInternalServerError().WithMessage(failMessage)
}
