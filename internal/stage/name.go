package stage

import (
	"strings"

	"github.com/cruciblehq/greenhouse/internal/failure"
)

const (

	// Longest stage name the build engine accepts.
	MaxNameLength = 128

	// Name used when sanitizing leaves nothing behind.
	fallbackName = "stage"
)

// A validated stage identifier.
//
// Values are produced by [Sanitize] or [NewName]; both guarantee [Valid].
type Name string

// Maps an arbitrary string to a legal stage name.
//
// The input is lowercased and every rune outside [a-z0-9._] becomes "-".
// Runs of "---" are collapsed to "-", leading "-" and "." are trimmed and
// the result is cut to [MaxNameLength] bytes. An input with nothing left
// yields "stage". Sanitize is total and idempotent.
func Sanitize(raw string) Name {
	s := strings.Map(func(r rune) rune {
		if isNameRune(r) {
			return r
		}
		return '-'
	}, strings.ToLower(raw))

	for strings.Contains(s, "---") {
		s = strings.ReplaceAll(s, "---", "-")
	}

	s = strings.TrimLeft(s, "-.")
	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	if s == "" {
		s = fallbackName
	}

	return Name(s)
}

// Reports whether s is usable as a stage name as-is.
func Valid(s string) bool {
	if len(s) == 0 || len(s) > MaxNameLength {
		return false
	}
	if s[0] == '-' || s[0] == '.' {
		return false
	}
	for _, r := range s {
		if r != '-' && !isNameRune(r) {
			return false
		}
	}
	return true
}

// Validates s and returns it as a [Name].
func NewName(s string) (Name, error) {
	if !Valid(s) {
		return "", failure.Wrapf(failure.ErrValidation, "%w: %q", ErrInvalidName, s)
	}
	return Name(s), nil
}

// Returns the name as a string.
func (n Name) String() string {
	return string(n)
}

func isNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_'
}
