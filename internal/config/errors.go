package config

import "errors"

var (
	ErrUnknownKey = errors.New("unknown configuration key")
	ErrDecode     = errors.New("invalid configuration document")
	ErrEncode     = errors.New("cannot encode configuration")
	ErrRead       = errors.New("cannot read configuration")
)
