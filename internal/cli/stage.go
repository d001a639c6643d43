package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/greenhouse/internal/source"
	"github.com/cruciblehq/greenhouse/internal/stage"
)

// Represents the 'greenhouse stage' command group.
type StageCmd struct {
	Registry  StageRegistryCmd  `cmd:"" help:"Print the stage for a registry crate."`
	Git       StageGitCmd       `cmd:"" help:"Print the stage for a git checkout."`
	Workspace StageWorkspaceCmd `cmd:"" help:"Print the mounts of a workspace context."`
	Toolchain StageToolchainCmd `cmd:"" help:"Print the toolchain stage."`
}

// Represents the 'greenhouse stage registry' command.
type StageRegistryCmd struct {
	Crate string `arg:"" help:"Crate to fetch." placeholder:"NAME@VERSION=CHECKOUT"`
}

// Executes the stage registry command.
func (c *StageRegistryCmd) Run(ctx context.Context) error {
	crate, err := parseCrate(c.Crate)
	if err != nil {
		return err
	}
	return printSource(ctx, crate)
}

// Represents the 'greenhouse stage git' command.
type StageGitCmd struct {
	Checkout string `arg:"" help:"Checkout directory under cargo's git cache." type:"existingdir"`
}

// Executes the stage git command.
func (c *StageGitCmd) Run(ctx context.Context) error {
	return printSource(ctx, source.Git{Checkout: c.Checkout})
}

// Represents the 'greenhouse stage workspace' command.
type StageWorkspaceCmd struct {
	Root string `arg:"" help:"Project root." type:"existingdir"`
}

// Executes the stage workspace command.
func (c *StageWorkspaceCmd) Run(ctx context.Context) error {
	return printSource(ctx, source.Workspace{Root: c.Root})
}

// Represents the 'greenhouse stage toolchain' command.
type StageToolchainCmd struct {
	NoLock bool `help:"Leave the base image as configured instead of pinning it to a digest."`
}

// Executes the stage toolchain command.
func (c *StageToolchainCmd) Run(ctx context.Context) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	tc, err := resolveToolchain(ctx, settings)
	if err != nil {
		return err
	}

	if l := locker(!c.NoLock, settings); l != nil {
		base, err := l.Lock(ctx, tc.Base())
		if err != nil {
			return err
		}
		tc = tc.WithBase(base)
	}

	block, err := tc.Block()
	if err != nil {
		return err
	}

	_, err = fmt.Print(block)
	return err
}

// Builds one source and prints its block, or its mounts when it has none.
func printSource(ctx context.Context, src source.Source) error {
	env, err := sourceEnv()
	if err != nil {
		return err
	}

	res, err := src.Build(ctx, env)
	if err != nil {
		return err
	}

	if res.Block != "" {
		_, err = fmt.Print(stage.Trim(res.Block))
		return err
	}

	if res.Stage.Context != nil {
		fmt.Println(res.Stage.Context.Flag())
	}
	for _, m := range res.Stage.Mounts {
		fmt.Println(m.Flag())
	}
	return nil
}
