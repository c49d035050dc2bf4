// Package apperr holds the error taxonomy shared by services and the HTTP
// boundary. Services return these; response.FromError maps them to status
// codes and stable machine-readable codes.
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ValidationError reports missing or malformed input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports an unknown id or slug
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// AuthorizationError reports a missing session or an insufficient role
type AuthorizationError struct {
	Message         string
	Unauthenticated bool
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// InvalidStateError reports an illegal state transition
type InvalidStateError struct {
	Current string
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

// ConflictError reports a unique-constraint clash (slug, email, order)
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// UnsupportedFormatError reports a document type text extraction cannot read
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q", e.Format)
}

// UpstreamError wraps a store or external-service failure. Its detail is
// logged, never returned to the client.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func Unauthenticated(message string) error {
	return &AuthorizationError{Message: message, Unauthenticated: true}
}

func Forbidden(message string) error {
	return &AuthorizationError{Message: message}
}

func InvalidState(current, message string) error {
	return &InvalidStateError{Current: current, Message: message}
}

func Conflict(message string) error {
	return &ConflictError{Message: message}
}

func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// FromDB converts a GORM error: record-not-found becomes NotFoundError for
// resource, duplicate keys become ConflictError, anything else UpstreamError.
func FromDB(err error, resource, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict(resource + " already exists")
	default:
		return Upstream(op, err)
	}
}
