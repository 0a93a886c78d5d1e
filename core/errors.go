package core

import "errors"

// Derivation errors. All of them are recoverable; the presentation layer
// shows N/A for the affected fields instead of aborting.
var (
	ErrNotFound             = errors.New("period not found in series")
	ErrDivisionByEmptyRange = errors.New("division by empty range")
	ErrDivisionByZero       = errors.New("division by zero")
	ErrParse                = errors.New("cannot parse period label")
)

// Taxonomy names returned by ErrorKind.
const (
	KindNotFound             = "NotFound"
	KindDivisionByEmptyRange = "DivisionByEmptyRange"
	KindDivisionByZero       = "DivisionByZero"
	KindParseError           = "ParseError"
)

// ErrorKind maps a derivation error to its taxonomy name.
// It returns an empty string for nil or unrelated errors.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDivisionByEmptyRange):
		return KindDivisionByEmptyRange
	case errors.Is(err, ErrDivisionByZero):
		return KindDivisionByZero
	case errors.Is(err, ErrParse):
		return KindParseError
	default:
		return ""
	}
}
