package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to one named request field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries recoverable input errors to the HTTP error
// handler, either as a single message or per field.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown marks an error no request can recover from, such as a KV
// substrate that stopped serving reads. The HTTP error handler turns it
// into a graceful server shutdown.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
