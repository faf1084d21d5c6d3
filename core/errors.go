package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

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

// ParseError wraps a malformed-input error (import document, spreadsheet).
// The underlying message is surfaced to the caller; no partial import is ever applied.
type ParseError struct {
	Err error
}

func NewParseError(err error) error {
	return &ParseError{err}
}

func (err ParseError) Error() string {
	if err.Err == nil {
		return "malformed input"
	}
	return err.Err.Error()
}

// ConflictError indicates a uniqueness violation (e.g. duplicate schedule assignment).
type ConflictError struct {
	msg string
}

func NewConflictError(msg string) error {
	return &ConflictError{msg}
}

func (err ConflictError) Error() string { return err.msg }

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
