package failure

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("resource unavailable")
	ErrParse       = errors.New("parse error")
	ErrEncoding    = errors.New("encoding error")
	ErrTimeout     = errors.New("timed out")
	ErrBug         = errors.New("BUG: internal assumption violated")
)

// Wraps err with kind. The result matches both kind and err with [errors.Is].
//
// A nil err yields nil.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Formats a message and wraps it with kind.
//
// The format may itself contain %w verbs to keep further causes in the chain.
func Wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %w", kind, fmt.Errorf(format, args...))
}
