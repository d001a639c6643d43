package toolchain

import "errors"

var (
	ErrUnsupportedArch = errors.New("unsupported architecture")
	ErrVersionInfo     = errors.New("unrecognized compiler version info")
)
