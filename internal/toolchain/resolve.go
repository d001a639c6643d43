package toolchain

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cruciblehq/greenhouse/internal/command"
	"github.com/cruciblehq/greenhouse/internal/failure"
)

// Parses the output of "rustc -vV" into a descriptor.
//
// The release, commit-hash and commit-date keys are required. The channel
// follows from the release suffix.
func ParseVersionInfo(text string) (Descriptor, error) {
	fields := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	var d Descriptor
	for key, dst := range map[string]*string{
		"release":     &d.Version,
		"commit-hash": &d.Commit,
		"commit-date": &d.Date,
	} {
		value, ok := fields[key]
		if !ok || value == "" {
			return Descriptor{}, failure.Wrapf(failure.ErrParse, "%w: missing %s", ErrVersionInfo, key)
		}
		*dst = value
	}

	switch {
	case strings.Contains(d.Version, "-nightly"), strings.Contains(d.Version, "-dev"):
		d.Channel = Nightly
	case strings.Contains(d.Version, "-beta"):
		d.Channel = Beta
	default:
		d.Channel = Stable
	}

	return d, nil
}

// Asks the compiler on PATH to describe itself.
func Resolve(ctx context.Context, runner command.Runner) (Descriptor, error) {
	out, err := runner.Run(ctx, "rustc", "-vV")
	if err != nil {
		return Descriptor{}, err
	}

	d, err := ParseVersionInfo(out)
	if err != nil {
		return Descriptor{}, err
	}

	slog.Debug("toolchain resolved", "version", d.Version, "channel", d.Channel, "date", d.Date)

	return d, nil
}
