// Package errs defines the error types the API hands back to clients.
//
// Every failure a handler returns ends up as an *HTTPError before it is written,
// so clients always receive the same JSON shape:
//
//	{ "error": "User not found" }
//
// Validation failures additionally carry per-field details:
//
//	{ "error": "Validation failed", "errors": [{ "field": "email", "error": "is required" }] }
package errs

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldError is a single field-level validation problem.
type FieldError struct {
	// Field is the lower-cased JSON field name (e.g. "email").
	Field string `json:"field"`

	// Error is the human-readable reason.
	Error string `json:"error"`
}

// HTTPError is the error type every handler returns to the global error handler.
//
// Only Message (as "error") and Errors are serialized. Code and Status are used for
// logging and for picking the response status; they never reach the client.
type HTTPError struct {
	// Code is a machine-friendly code such as "NOT_FOUND". Logged, not rendered.
	Code string `json:"-"`

	// Message is what the client sees under the "error" key.
	Message string `json:"error"`

	// Status is the HTTP status code to respond with.
	Status int `json:"-"`

	// Errors holds field-level validation errors, if any.
	Errors []FieldError `json:"errors,omitempty"`
}

// Error makes *HTTPError satisfy the error interface. It returns the client message.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError of any code or status.
//
// errors.Is(err, &HTTPError{}) therefore answers "was this already translated for the client?".
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
		Errors:  e.Errors,
	}
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	// A Caser is stateful, so one is made per call.
	return cases.Upper(language.Und).String(strings.ReplaceAll(str, " ", "_"))
}
