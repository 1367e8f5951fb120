package sqlerr

import (
	"errors"

	"github.com/deppfellow/users-api/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrCode reports the Code of the first *Error (or raw *pgconn.PgError) in err's chain,
// or Other when there is none.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// Normalize replaces a *pgconn.PgError in err with its *Error form.
// Any other error is returned unchanged, nil stays nil.
func Normalize(err error) error {
	var pgerr *pgconn.PgError
	if err == nil || !errors.As(err, &pgerr) {
		return err
	}

	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return err
	}

	return ConvertPgError(pgerr)
}

// ConvertPgError copies the fields of a raw Postgres error into *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// HandleError converts an error that escaped the handlers into a client-facing error.
//
// *errs.HTTPError passes through untouched. Handlers translate store failures
// themselves, so anything else is unexpected and becomes a generic 500; the
// database details stay in the logs.
func HandleError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return errs.NewInternalServerError()
}
