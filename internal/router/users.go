package router

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"

	"github.com/deppfellow/users-api/internal/handler"
	"github.com/deppfellow/users-api/internal/model"
	"github.com/labstack/echo/v4"
)

// Route declares one operation: method and path (OpenAPI {param} style), the
// request schema and the response schema per status code.
type Route struct {
	Operation string         `json:"operation"`
	Method    string         `json:"method"`
	Path      string         `json:"path"`
	Tag       string         `json:"tag"`
	Summary   string         `json:"summary"`
	Request   string         `json:"request,omitempty"`
	Responses map[int]string `json:"responses"`
}

// SuccessStatus is the lowest 2xx status the route declares.
func (r Route) SuccessStatus() int {
	codes := make([]int, 0, len(r.Responses))
	for code := range r.Responses {
		if code >= 200 && code < 300 {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return http.StatusOK
	}
	sort.Ints(codes)
	return codes[0]
}

var pathParam = regexp.MustCompile(`\{([^}/]+)\}`)

// EchoPath converts /users/{id} into echo's /users/:id.
func (r Route) EchoPath() string {
	return pathParam.ReplaceAllString(r.Path, ":$1")
}

const (
	schemaUser               = "User"
	schemaUserList           = "User[]"
	schemaError              = "Error"
	schemaValidationError    = "ValidationError"
	schemaCreateUserRequest  = "CreateUserRequest"
	schemaUpdateUserRequest  = "UpdateUserRequest"
	schemaDeleteUserResponse = "DeleteUserResponse"
)

// UserRoutes is the users API. static/openapi.json documents the same table.
var UserRoutes = []Route{
	{
		Operation: "listUsers",
		Method:    http.MethodGet,
		Path:      "/users",
		Tag:       "users",
		Summary:   "List users",
		Responses: map[int]string{
			http.StatusOK:                  schemaUserList,
			http.StatusInternalServerError: schemaError,
		},
	},
	{
		Operation: "createUser",
		Method:    http.MethodPost,
		Path:      "/users",
		Tag:       "users",
		Summary:   "Create a user",
		Request:   schemaCreateUserRequest,
		Responses: map[int]string{
			http.StatusCreated:             schemaUser,
			http.StatusBadRequest:          schemaValidationError,
			http.StatusInternalServerError: schemaError,
		},
	},
	{
		Operation: "getUser",
		Method:    http.MethodGet,
		Path:      "/users/{id}",
		Tag:       "users",
		Summary:   "Get a user by id",
		Responses: map[int]string{
			http.StatusOK:                  schemaUser,
			http.StatusNotFound:            schemaError,
			http.StatusInternalServerError: schemaError,
		},
	},
	{
		Operation: "updateUser",
		Method:    http.MethodPatch,
		Path:      "/users/{id}",
		Tag:       "users",
		Summary:   "Partially update a user",
		Request:   schemaUpdateUserRequest,
		Responses: map[int]string{
			http.StatusOK:                  schemaUser,
			http.StatusBadRequest:          schemaValidationError,
			http.StatusNotFound:            schemaError,
			http.StatusInternalServerError: schemaError,
		},
	},
	{
		Operation: "deleteUser",
		Method:    http.MethodDelete,
		Path:      "/users/{id}",
		Tag:       "users",
		Summary:   "Delete a user",
		Responses: map[int]string{
			http.StatusOK:                  schemaDeleteUserResponse,
			http.StatusNotFound:            schemaError,
			http.StatusInternalServerError: schemaError,
		},
	},
}

// userHandlers binds each operation in UserRoutes to its handler.
func userHandlers(h *handler.Handlers) map[string]func(status int) echo.HandlerFunc {
	u := h.User
	return map[string]func(status int) echo.HandlerFunc{
		"listUsers": func(status int) echo.HandlerFunc {
			return handler.Handle(u.Handler, u.ListUsers, status, func() *model.ListUsersRequest {
				return &model.ListUsersRequest{}
			})
		},
		"createUser": func(status int) echo.HandlerFunc {
			return handler.Handle(u.Handler, u.CreateUser, status, func() *model.CreateUserRequest {
				return &model.CreateUserRequest{}
			})
		},
		"getUser": func(status int) echo.HandlerFunc {
			return handler.Handle(u.Handler, u.GetUser, status, func() *model.UserIDRequest {
				return &model.UserIDRequest{}
			})
		},
		"updateUser": func(status int) echo.HandlerFunc {
			return handler.Handle(u.Handler, u.UpdateUser, status, func() *model.UpdateUserRequest {
				return &model.UpdateUserRequest{}
			})
		},
		"deleteUser": func(status int) echo.HandlerFunc {
			return handler.Handle(u.Handler, u.DeleteUser, status, func() *model.UserIDRequest {
				return &model.UserIDRequest{}
			})
		},
	}
}

func registerUserRoutes(r *echo.Echo, h *handler.Handlers) error {
	handlers := userHandlers(h)

	for _, route := range UserRoutes {
		newHandler, ok := handlers[route.Operation]
		if !ok {
			return fmt.Errorf("no handler for operation %q", route.Operation)
		}
		r.Add(route.Method, route.EchoPath(), newHandler(route.SuccessStatus())).Name = route.Operation
	}

	return nil
}
