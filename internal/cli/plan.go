package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/greenhouse/internal/command"
	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/paths"
	"github.com/cruciblehq/greenhouse/internal/plan"
	"github.com/cruciblehq/greenhouse/internal/source"
)

// Represents the 'greenhouse plan' command.
type PlanCmd struct {
	Workspace string   `short:"w" help:"Project root exposed as a build context." type:"path" placeholder:"DIR"`
	Locate    bool     `help:"Find the project root with cargo locate-project."`
	From      string   `help:"Directory to locate the project from. Implies --locate." type:"path" placeholder:"DIR"`
	Crate     []string `help:"Registry dependency." placeholder:"NAME@VERSION=CHECKOUT"`
	Git       []string `help:"Git dependency checkout directory." placeholder:"CHECKOUT"`
	NoLock    bool     `help:"Leave image references as configured instead of pinning them to digests."`
	Output    string   `short:"o" help:"Write the Dockerfile to a file instead of stdout." type:"path" placeholder:"FILE"`
}

// Executes the plan command.
func (c *PlanCmd) Run(ctx context.Context) error {
	env, err := sourceEnv()
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	sources, err := c.sources(ctx)
	if err != nil {
		return err
	}

	tc, err := resolveToolchain(ctx, settings)
	if err != nil {
		return err
	}

	p, err := plan.Build(ctx, env, plan.Options{
		Syntax:    settings.SyntaxImage(),
		Toolchain: tc,
		Add:       settings.Add,
		Installer: settings.Installer(),
		Sources:   sources,
		CacheFrom: settings.Cache.Imports(),
		CacheTo:   settings.Cache.Exports(),
		Locker:    locker(!c.NoLock, settings),
	})
	if err != nil {
		return err
	}

	if err := c.write(p.Dockerfile); err != nil {
		return err
	}

	if args := p.BuildArgs(); len(args) > 0 {
		slog.Info("build arguments", "args", strings.Join(args, " "))
	}

	return nil
}

// Collects the sources named on the command line, workspace first.
func (c *PlanCmd) sources(ctx context.Context) ([]source.Source, error) {
	var sources []source.Source

	root := c.Workspace
	if root == "" && (c.Locate || c.From != "") {
		located, err := source.LocateProject(ctx, command.Exec{}, c.From)
		if err != nil {
			return nil, err
		}
		root = located
	}
	if root != "" {
		sources = append(sources, source.Workspace{Root: root})
	}

	for _, s := range c.Crate {
		crate, err := parseCrate(s)
		if err != nil {
			return nil, err
		}
		sources = append(sources, crate)
	}

	for _, checkout := range c.Git {
		sources = append(sources, source.Git{Checkout: checkout})
	}

	return sources, nil
}

// Writes the Dockerfile to the output file, or stdout.
func (c *PlanCmd) write(dockerfile string) error {
	if c.Output == "" {
		_, err := fmt.Print(dockerfile)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Output), paths.DefaultDirMode); err != nil {
		return failure.Wrap(failure.ErrUnavailable, err)
	}
	if err := os.WriteFile(c.Output, []byte(dockerfile), paths.DefaultFileMode); err != nil {
		return failure.Wrap(failure.ErrUnavailable, err)
	}

	slog.Info("dockerfile written", "path", c.Output)
	return nil
}

// Parses "NAME@VERSION=CHECKOUT".
func parseCrate(s string) (source.Registry, error) {
	id, checkout, ok := strings.Cut(s, "=")
	if !ok || checkout == "" {
		return source.Registry{}, failure.Wrapf(failure.ErrValidation, "crate %q: want NAME@VERSION=CHECKOUT", s)
	}

	name, version, ok := strings.Cut(id, "@")
	if !ok || name == "" || version == "" {
		return source.Registry{}, failure.Wrapf(failure.ErrValidation, "crate %q: want NAME@VERSION=CHECKOUT", s)
	}

	return source.Registry{Name: name, Version: version, Checkout: checkout}, nil
}
