package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/cruciblehq/greenhouse/internal/command"
)

// Answers every command with a fixed output and records the invocations.
type fakeRunner struct {
	out   string
	err   error
	dir   string
	calls []string
}

func (f *fakeRunner) In(dir string) command.Runner {
	f.dir = dir
	return f
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, strings.TrimSpace(fmt.Sprint(name, " ", strings.Join(args, " "))))
	return f.out, f.err
}
