package image

import "errors"

var (
	ErrInvalidReference = errors.New("invalid image reference")
	ErrInvalidDigest    = errors.New("invalid image digest")
	ErrAlreadyLocked    = errors.New("image reference already locked")
	ErrMediaType        = errors.New("reference does not resolve to an image")
)
