// Package validation binds request data and validates it.
//
// Request types declare their rules with `validate` struct tags and implement
// Validatable by running them through the shared validator. Failures are
// converted into a 400 *errs.HTTPError carrying per-field details.
package validation

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validatable is implemented by request payload types that know how to validate themselves.
type Validatable interface {
	Validate() error
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the process-wide validator. validator.Validate caches struct
// metadata and is safe for concurrent use, so one instance is shared.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates s against its `validate` tags.
func Struct(s interface{}) error {
	return Validator().Struct(s)
}

// CustomValidationError represents a validation issue that tags can't express.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}
