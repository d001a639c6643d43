package stage

import "errors"

var (
	ErrInvalidName = errors.New("invalid stage name")
)
