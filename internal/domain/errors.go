package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)

type notFoundError struct{ resource string }

func (e notFoundError) Error() string        { return e.resource + " not found" }
func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound reports a missing resource; errors.Is(err, ErrNotFound) holds.
func NotFound(resource string) error { return notFoundError{resource: resource} }

type conflictError struct{ msg string }

func (e conflictError) Error() string        { return e.msg }
func (e conflictError) Is(target error) bool { return target == ErrConflict }

func Conflict(format string, args ...any) error {
	return conflictError{msg: fmt.Sprintf(format, args...)}
}

type forbiddenError struct{ msg string }

func (e forbiddenError) Error() string        { return e.msg }
func (e forbiddenError) Is(target error) bool { return target == ErrForbidden }

func Forbidden(msg string) error { return forbiddenError{msg: msg} }

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+":"+f.Rule)
	}
	return e.Message + " (" + strings.Join(parts, ", ") + ")"
}

func Invalid(msg string, fields ...FieldError) error {
	return &ValidationError{Message: msg, Fields: fields}
}

// InvalidField is a single-field validation error.
func InvalidField(field, rule string) error {
	return &ValidationError{Message: "Invalid data", Fields: []FieldError{{Field: field, Rule: rule}}}
}

func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
