package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/repository"
)

// Failure kinds surfaced to the boundary. The store sentinels are reused so
// a repository error that escapes unwrapped still classifies correctly.
var (
	ErrNotFound            = repository.ErrNotFound
	ErrConstraintViolation = repository.ErrConstraintViolation
	ErrValidation          = errors.New("validation failed")
)

// Error is a classified failure with a message safe to show to the caller.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool { return target == e.kind }

func notFound(msg string) error {
	return &Error{kind: ErrNotFound, msg: msg}
}

func conflict(msg string, cause error) error {
	return &Error{kind: ErrConstraintViolation, msg: msg, cause: cause}
}

// FieldIssue names one failing input field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failing field of a rejected input.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s %s", is.Field, is.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Issues: []FieldIssue{{Field: field, Message: msg}}}
}
