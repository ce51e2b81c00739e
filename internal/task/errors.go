package task

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Store when no row matches the requested id.
var ErrNotFound = errors.New("task not found")

// Kind classifies a service failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindInfrastructure:
		return "infrastructure_error"
	default:
		return "unknown_error"
	}
}

// Error is the failure type returned by every service operation.
// Callers branch on Kind rather than on the message.
type Error struct {
	Kind Kind
	Op   string
	ID   int64 // set for KindNotFound
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindNotFound:
		return fmt.Sprintf("%s: task with id %d not found", e.Op, e.ID)
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) hold for every not-found failure,
// including ones that did not originate from a Store.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool     { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool       { return KindOf(err) == KindNotFound }
func IsInfrastructure(err error) bool { return KindOf(err) == KindInfrastructure }

func validationError(op, msg string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg, Err: err}
}

func notFoundError(op string, id int64) *Error {
	return &Error{Kind: KindNotFound, Op: op, ID: id, Err: ErrNotFound}
}

func infrastructureError(op string, err error) *Error {
	return &Error{Kind: KindInfrastructure, Op: op, Err: err}
}
