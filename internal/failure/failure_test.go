package failure

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	err := Wrap(ErrUnavailable, fs.ErrNotExist)

	if !errors.Is(err, ErrUnavailable) {
		t.Fatal("wrapped error does not match its kind")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("wrapped error lost its cause")
	}
	if Wrap(ErrParse, nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrParse, "bad line %q: %w", "x\ty", fs.ErrInvalid)

	if !errors.Is(err, ErrParse) || !errors.Is(err, fs.ErrInvalid) {
		t.Fatalf("err = %v, want ErrParse and fs.ErrInvalid in chain", err)
	}
	if !strings.Contains(err.Error(), `"x\ty"`) {
		t.Fatalf("err = %q, missing raw text", err.Error())
	}
}
