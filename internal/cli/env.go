package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/cruciblehq/greenhouse/internal/command"
	"github.com/cruciblehq/greenhouse/internal/config"
	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/image"
	"github.com/cruciblehq/greenhouse/internal/paths"
	"github.com/cruciblehq/greenhouse/internal/source"
	"github.com/cruciblehq/greenhouse/internal/toolchain"
	"github.com/cruciblehq/greenhouse/internal/virtual"
)

// Virtualization state of this invocation, set once the environment is read.
var vctx *virtual.Context

// Returns the source environment, reading CARGO_TARGET_DIR and CARGO_HOME
// on first use.
func sourceEnv() (source.Env, error) {
	if vctx == nil {
		if RootCmd.TargetDir == "" {
			return source.Env{}, failure.Wrapf(failure.ErrValidation, "CARGO_TARGET_DIR is not set")
		}
		vctx = virtual.New(RootCmd.TargetDir, RootCmd.CargoHome)
		slog.Debug("environment", "target", vctx.OutputRoot(), "cargo-home", vctx.CargoHome())
	}

	return source.Env{Virtual: vctx, Runner: command.Exec{}}, nil
}

// Loads the settings file. A missing file is only tolerated at the default
// location.
func loadSettings() (config.Settings, error) {
	s, err := config.Load(RootCmd.Config)
	if errors.Is(err, os.ErrNotExist) && RootCmd.Config == paths.Settings() {
		slog.Debug("no settings file", "path", RootCmd.Config)
		return config.Settings{}, nil
	}
	return s, err
}

// Returns the toolchain named in the settings, or the one on PATH.
func resolveToolchain(ctx context.Context, s config.Settings) (toolchain.Toolchain, error) {
	if s.ToolchainImage != nil {
		return toolchain.Image{Ref: *s.ToolchainImage}, nil
	}

	desc, err := toolchain.Resolve(ctx, command.Exec{})
	if err != nil {
		return nil, err
	}
	desc.BaseImage = s.BaseImage

	return desc, nil
}

// Returns a registry locker when lock is set, nil otherwise.
func locker(lock bool, s config.Settings) image.Locker {
	if !lock {
		return nil
	}
	return image.NewRegistryLocker(s.Daemon.Registries())
}

// An error whose message shows real paths instead of virtual ones.
type revealed struct {
	msg string
	err error
}

func (e *revealed) Error() string { return e.msg }
func (e *revealed) Unwrap() error { return e.err }

// Rewrites virtual paths in err's message back to this machine's.
func reveal(err error) error {
	if vctx == nil {
		return err
	}
	msg := vctx.Unvirtualize(vctx.Unhide(err.Error()))
	if msg == err.Error() {
		return err
	}
	return &revealed{msg: msg, err: err}
}
