package tools

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField       = errors.New("missing field")
	ErrInvalidEnum        = errors.New("invalid enum value")
	ErrMalformedArguments = errors.New("malformed arguments")
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrCombatPrecondition = errors.New("combat precondition failed")
	ErrDuplicate          = errors.New("already exists")
)

// Error is a failed tool application. It unwraps to one of the sentinel
// errors above so callers can use errors.Is.
type Error struct {
	Op    string
	Kind  error
	Field string
	Msg   string
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s %q: %s", e.Op, e.Kind, e.Field, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("%s: %s %q", e.Op, e.Kind, e.Field)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Kind }

func missingField(op, field string) error {
	return &Error{Op: op, Kind: ErrMissingField, Field: field}
}

func invalidEnum(op, field, value string) error {
	return &Error{Op: op, Kind: ErrInvalidEnum, Field: field, Msg: fmt.Sprintf("%q is not allowed", value)}
}

func malformed(op string, err error) error {
	return &Error{Op: op, Kind: ErrMalformedArguments, Msg: err.Error()}
}

func malformedField(op, field, msg string) error {
	return &Error{Op: op, Kind: ErrMalformedArguments, Field: field, Msg: msg}
}

func notFound(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrEntityNotFound, Msg: fmt.Sprintf(format, args...)}
}

func precondition(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrCombatPrecondition, Msg: fmt.Sprintf(format, args...)}
}

func duplicate(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrDuplicate, Msg: fmt.Sprintf(format, args...)}
}
