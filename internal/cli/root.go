package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/cruciblehq/greenhouse/internal"
	"github.com/cruciblehq/greenhouse/internal/paths"
)

// Represents the root command for greenhouse.
var RootCmd struct {
	Quiet     bool       `short:"q" help:"Suppress informational output."`
	Verbose   bool       `short:"v" help:"Enable verbose output."`
	Debug     bool       `short:"d" help:"Enable debug output."`
	Config    string     `short:"c" help:"Settings file." env:"GREENHOUSE_CONFIG" default:"${settings}" type:"path" placeholder:"PATH"`
	TargetDir string     `help:"Build output root." env:"CARGO_TARGET_DIR" type:"path" placeholder:"DIR"`
	CargoHome string     `help:"Cargo home holding the registry and git caches." env:"CARGO_HOME" default:"${cargo_home}" type:"path" placeholder:"DIR"`
	Plan      PlanCmd    `cmd:"" help:"Print the Dockerfile for a build."`
	Stage     StageCmd   `cmd:"" help:"Print a single stage."`
	Conf      ConfigCmd  `cmd:"" name:"config" help:"Inspect settings files."`
	Version   VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Assembles Rust builds into multi-stage Dockerfiles.\n\nEvery crate, git dependency and workspace becomes its own cacheable stage."),
		kong.UsageOnError(),
		kong.Vars{
			"version":    internal.VersionString(),
			"settings":   paths.Settings(),
			"cargo_home": paths.CargoHome(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	if err := kongCtx.Run(); err != nil {
		return reveal(err)
	}

	return nil
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	handler, ok := slog.Default().Handler().(*log.Logger)
	if !ok {
		return // Not a charmbracelet logger, nothing to configure
	}

	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	if debug {
		handler.SetLevel(log.DebugLevel)
	} else if quiet {
		handler.SetLevel(log.WarnLevel)
	} else {
		handler.SetLevel(log.InfoLevel)
	}

	handler.SetReportTimestamp(verbose)
	handler.SetReportCaller(verbose)
}
