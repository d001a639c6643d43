package plan

import "errors"

var (
	ErrPlan     = errors.New("cannot build plan")
	ErrConflict = errors.New("conflicting stage definitions")
)
