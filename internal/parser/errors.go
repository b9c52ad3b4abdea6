package parser

import "errors"

// Error kinds returned by Parser methods. Use errors.Is to test for them.
var (
	ErrEmptyInput        = errors.New("empty input")
	ErrEmptyDescription  = errors.New("empty description")
	ErrMissingClause     = errors.New("missing date clause")
	ErrBadDateFormat     = errors.New("bad date format")
	ErrEmptyKeyword      = errors.New("empty keyword")
	ErrInvalidTaskNumber = errors.New("invalid task number")
)

// Error is a command error carrying a message meant for the user.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}
