package source

import (
	"context"
	"unicode/utf8"

	"github.com/cruciblehq/greenhouse/internal/command"
	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/stage"
	"github.com/cruciblehq/greenhouse/internal/virtual"
)

// Collaborators shared by every source builder.
type Env struct {
	Virtual *virtual.Context // Output root, cargo home and hidden index.
	Runner  command.Runner   // Runs git and cargo queries.
}

// Something that builds into exactly one stage.
type Source interface {
	Build(ctx context.Context, env Env) (stage.Result, error)
}

// Fails with [failure.ErrEncoding] unless every path is valid UTF-8.
func checkUTF8(paths ...string) error {
	for _, p := range paths {
		if !utf8.ValidString(p) {
			return failure.Wrapf(failure.ErrEncoding, "path %q is not valid UTF-8", p)
		}
	}
	return nil
}
