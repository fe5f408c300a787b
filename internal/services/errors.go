package services

import (
	"errors"
	"fmt"
)

// ErrUnauthorized means the session holds no usable provider credential.
var ErrUnauthorized = errors.New("not authenticated with YouTube")

// ValidationError reports a missing or malformed input field.
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

// NotFoundError reports an id (or parent/child relation) that does not resolve.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// UpstreamError wraps a failure reported by the YouTube API.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return "youtube api: " + e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func notFound(entity string) error {
	return &NotFoundError{Entity: entity}
}
