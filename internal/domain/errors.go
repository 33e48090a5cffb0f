package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("concurrent update conflict")
	ErrNotFound          = errors.New("not found")
)

// ValidationError carries field-level messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidTransitionError reports a state machine violation, including a
// transition refused because the tool is blocked by overdue maintenance.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ConflictError is returned when a compare-and-set update matched no row because
// another request changed the record first.
type ConflictError struct {
	Entity string
	ID     int32
	Detail string
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("%s %d was modified concurrently", e.Entity, e.ID)
	if e.Detail != "" {
		msg = fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Detail)
	}
	return msg
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type NotFoundError struct {
	Entity string
	ID     int32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
