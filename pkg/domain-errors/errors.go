// Package domainerrors carries the typed error values shared by the board
// aggregate, its services and the HTTP transport.
//
// Every error has a Code that callers branch on and a human-readable message
// naming the offending field or entity. Infrastructure facts (record missing,
// version conflict) live in pkg/platform/sentinel and are translated into
// coded errors at the service boundary.
package domainerrors

import (
	"errors"
	"strings"
)

// Code classifies an error for callers and transports.
type Code string

// Aggregate codes. These are raised by the board aggregate itself.
const (
	CodeRequiredField  Code = "required_field"
	CodeNotFound       Code = "not_found"
	CodeAlreadyPresent Code = "already_present"
	CodeInvalidRange   Code = "invalid_range"
)

// Service and transport codes.
const (
	CodeValidation   Code = "validation"
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeConflict     Code = "conflict"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal_error"
)

// Error is a coded error. Details holds per-field messages for validation
// failures; it is empty for single-cause errors.
type Error struct {
	Code    Code
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
// Returns nil when err is nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// NewValidation collects field messages into a single validation error.
// Returns nil when there are no messages.
func NewValidation(details []string) error {
	if len(details) == 0 {
		return nil
	}
	return &Error{
		Code:    CodeValidation,
		Message: strings.Join(details, " "),
		Details: append([]string(nil), details...),
	}
}

// CodeOf returns the code of the outermost coded error in the chain, or
// CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost coded error in the chain has code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}

// DetailsOf returns the field messages of a validation error, or the single
// message of any other coded error.
func DetailsOf(err error) []string {
	var de *Error
	if !errors.As(err, &de) {
		return nil
	}
	if len(de.Details) > 0 {
		return append([]string(nil), de.Details...)
	}
	return []string{de.Message}
}
