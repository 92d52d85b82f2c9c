package quote

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation indicates one or more fields broke their rules.
	ErrValidation = errors.New("quote: validation failed")
	// ErrDispatch indicates the webhook request could not be sent.
	ErrDispatch = errors.New("quote: dispatch failed")
	// ErrSubmissionInProgress is returned while an earlier submit is still running.
	ErrSubmissionInProgress = errors.New("quote: submission already in progress")
	// ErrUnknownField is returned for field names the form does not have.
	ErrUnknownField = errors.New("quote: unknown field")
)

// ValidationError carries the per-field messages of a rejected submit.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("quote: invalid fields: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DispatchError wraps the transport failure that stopped the webhook request.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("quote: dispatch failed: %v", e.Err)
}

// Is matches ErrDispatch.
func (e *DispatchError) Is(target error) bool { return target == ErrDispatch }

func (e *DispatchError) Unwrap() error { return e.Err }

// UnknownFieldError names the offending field.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("quote: unknown field %q", e.Field)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }
