package source

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/greenhouse/internal/command"
	"github.com/cruciblehq/greenhouse/internal/failure"
)

// Name of the manifest file at the root of every cargo project.
const manifest = "Cargo.toml"

// Returns the root directory of the cargo workspace dir belongs to. An empty
// dir uses the runner's own working directory.
func LocateProject(ctx context.Context, runner command.Runner, dir string) (string, error) {
	runner, err := command.In(runner, dir)
	if err != nil {
		return "", err
	}

	out, err := runner.Run(ctx, "cargo", "locate-project", "--workspace", "--message-format", "plain")
	if err != nil {
		return "", err
	}

	p := strings.TrimSpace(out)
	if !filepath.IsAbs(p) || filepath.Base(p) != manifest || strings.Contains(p, "\n") {
		return "", failure.Wrapf(failure.ErrParse, "%w: %q", ErrLocate, out)
	}

	return filepath.Dir(p), nil
}
