package core

import (
	"fmt"

	"github.com/pkg/errors"
)

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
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// NotFoundError reports a referenced record that does not resolve.
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func NewNotFoundError(entity string, id interface{}) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (err NotFoundError) Error() string {
	if err.ID == nil {
		return err.Entity + " not found"
	}
	return fmt.Sprintf("%s with id %v not found", err.Entity, err.ID)
}

// ConstraintError is a uniqueness conflict reported by the store.
type ConstraintError struct {
	Constraint string
	Message    string
}

func NewConstraintError(constraint, msg string) error {
	return &ConstraintError{Constraint: constraint, Message: msg}
}

func (err ConstraintError) Error() string {
	return err.Message
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

func IsConstraint(err error) bool {
	_, ok := errors.Cause(err).(*ConstraintError)
	return ok
}

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
