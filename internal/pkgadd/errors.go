package pkgadd

import "errors"

var (
	ErrInvalidPackage = errors.New("invalid package name")
)
