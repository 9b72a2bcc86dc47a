// Package apperr defines the error kinds that cross the handler boundary.
// Stores, normalizers and section services translate every failure into
// one of these kinds so the transport layer can map it to a status code
// and a field-addressable error body.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindUnsupportedFile Kind = "unsupported_file"
	KindStorage         Kind = "storage_failure"
	KindTimeout         Kind = "timeout"
)

// Field constraint names used in FieldError.Constraint.
const (
	ConstraintRequired = "required"
	ConstraintEnum     = "enum"
	ConstraintFormat   = "format"
	ConstraintRange    = "range"
	ConstraintUnknown  = "unknown"
	ConstraintSize     = "size"
	ConstraintType     = "type"
)

// FieldError points at a single offending field.
type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

// Error is the single error type returned across the handler boundary.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	var named []string
	for _, f := range e.Fields {
		if f.Field != "" {
			named = append(named, f.Field+": "+f.Message)
		}
	}
	if len(named) > 1 {
		b.WriteString(" [")
		b.WriteString(strings.Join(named, "; "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// FieldNames returns the names of the offending fields in order.
func (e *Error) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

// Validation builds a validation error from one or more field errors.
func Validation(fields ...FieldError) *Error {
	msg := "validation failed"
	if len(fields) == 1 {
		msg = fields[0].Message
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Invalid is shorthand for a single-field validation error.
func Invalid(field, constraint, format string, args ...any) *Error {
	return Validation(FieldError{Field: field, Constraint: constraint, Message: fmt.Sprintf(format, args...)})
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedFile reports an attachment rejected by the acceptance policy.
func UnsupportedFile(field, constraint, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Kind:    KindUnsupportedFile,
		Message: msg,
		Fields:  []FieldError{{Field: field, Constraint: constraint, Message: msg}},
	}
}

// Storage wraps a persistence failure. The cause is kept for logging and
// never rendered to the client.
func Storage(err error, format string, args ...any) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

// Timeout reports a request that ran past its deadline. The work it
// interrupted was not committed.
func Timeout(err error) *Error {
	return &Error{Kind: KindTimeout, Message: "request exceeded the allowed time", Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of err. A deadline anywhere in the chain is a
// timeout; other foreign errors are storage failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindStorage
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// HTTPStatus maps an error to its response status.
func HTTPStatus(err error) int {
	if KindOf(err) == KindTimeout {
		return http.StatusGatewayTimeout
	}
	ae, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnsupportedFile:
		for _, f := range ae.Fields {
			if f.Constraint == ConstraintSize {
				return http.StatusRequestEntityTooLarge
			}
		}
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}
