package source

import "errors"

var (
	ErrNoIndex       = errors.New("no registry index in path")
	ErrArchive       = errors.New("cannot read crate archive")
	ErrNotCargoCache = errors.New("remote is not a cargo git database")
	ErrFetchHead     = errors.New("unrecognized fetch head")
	ErrWorkspace     = errors.New("cannot materialize workspace")
	ErrNoName        = errors.New("path has no name")
	ErrLocate        = errors.New("unrecognized locate-project output")
)
