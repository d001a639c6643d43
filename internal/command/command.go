package command

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cruciblehq/greenhouse/internal/failure"
)

const (

	// Default bound on a single invocation.
	DefaultTimeout = 2 * time.Second

	// How long to wait for output pipes after the child is killed.
	waitDelay = 250 * time.Millisecond
)

// Runs a program and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// A [Runner] that can start programs from another working directory.
type DirRunner interface {
	Runner

	// Returns a runner starting programs in dir.
	In(dir string) Runner
}

// Returns r set to start programs in dir. An empty dir returns r as is.
//
// Runners not implementing [DirRunner] are reported as [failure.ErrBug].
func In(r Runner, dir string) (Runner, error) {
	if dir == "" {
		return r, nil
	}
	d, ok := r.(DirRunner)
	if !ok {
		return nil, failure.Wrapf(failure.ErrBug, "runner %T cannot change directory", r)
	}
	return d.In(dir), nil
}

// A [Runner] executing local programs.
type Exec struct {
	Timeout time.Duration // Per-invocation bound. Zero uses [DefaultTimeout].
	Dir     string        // Working directory. Empty inherits this process's.
	Env     []string      // Extra "KEY=value" entries appended to the environment.
}

// Returns a copy of e with Dir set to dir.
func (e Exec) In(dir string) Runner {
	e.Dir = dir
	return e
}

// Runs name with args and returns its standard output.
//
// A non-zero exit is reported with the command line and trimmed standard
// error. Output that is not valid UTF-8 is an [failure.ErrEncoding].
func (e Exec) Run(ctx context.Context, name string, args ...string) (string, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}
	cmd.SysProcAttr = sysProcAttr()
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	line := commandLine(name, args)
	slog.Debug("exec", "command", line, "timeout", timeout)

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", failure.Wrapf(failure.ErrTimeout, "%s: exceeded %s", line, timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", failure.Wrapf(failure.ErrUnavailable, "%s: exit code %d: %s", line, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", failure.Wrapf(failure.ErrUnavailable, "%s: %w", line, err)
	}

	if !utf8.Valid(stdout.Bytes()) {
		return "", failure.Wrapf(failure.ErrEncoding, "%s: output is not valid UTF-8", line)
	}

	return stdout.String(), nil
}

// Renders a command line for messages.
func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
