// Package apperr defines the error taxonomy shared by the commission services.
// Handlers translate these into HTTP status codes; services never retry them.
package apperr

import (
	"errors"
	"fmt"
)

// NotFoundError reports an absent referenced record (salesperson, plan, ...).
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Resource, e.ID)
}

func NotFound(resource string, id int64) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// InvalidInputError reports a rejected operand, e.g. a non-positive divisor
// or a ledger amount with a disallowed sign.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

func InvalidInput(format string, args ...interface{}) error {
	return &InvalidInputError{Msg: fmt.Sprintf(format, args...)}
}

func IsInvalidInput(err error) bool {
	var ii *InvalidInputError
	return errors.As(err, &ii)
}

// InvalidStateError reports an operation attempted against an entity whose
// current status does not permit it (e.g. paying a non-approved drawdown).
type InvalidStateError struct {
	Entity  string
	Current string
	Action  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s in status %s", e.Action, e.Entity, e.Current)
}

func InvalidState(entity, current, action string) error {
	return &InvalidStateError{Entity: entity, Current: current, Action: action}
}

func IsInvalidState(err error) bool {
	var is *InvalidStateError
	return errors.As(err, &is)
}
