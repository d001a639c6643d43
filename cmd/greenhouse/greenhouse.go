package main

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/cruciblehq/greenhouse/internal"
	"github.com/cruciblehq/greenhouse/internal/cli"
)

// The entry point for greenhouse.
//
// Sets up logging, runs the selected command once, and exits non-zero if it
// fails.
func main() {
	slog.SetDefault(logger())

	slog.Debug("invocation",
		"version", internal.VersionString(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Creates a logger writing to stderr, seeded from build-time linker flags.
//
// The logger is reconfigured after flag parsing via cli.Execute.
func logger() *slog.Logger {
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:  logLevel(),
		Prefix: internal.Name,
	})
	return slog.New(handler)
}

// Returns the log level derived from build-time linker flags.
func logLevel() log.Level {
	if internal.IsDebug() {
		return log.DebugLevel
	}
	if internal.IsQuiet() {
		return log.WarnLevel
	}
	return log.InfoLevel
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
