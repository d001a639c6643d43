package source

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/paths"
	"github.com/cruciblehq/greenhouse/internal/stage"
	"github.com/cruciblehq/greenhouse/internal/virtual"
	"github.com/opencontainers/go-digest"
)

const (

	// Ignore file the build engine reads when transferring a context.
	IgnoreFile = ".dockerignore"

	// File marking a directory as a cache (https://bford.info/cachedir/).
	CacheMarker = "CACHEDIR.TAG"
)

// A project directory exposed to the build as a named context.
type Workspace struct {
	Root string // Project root. Must not be the filesystem root.
}

// Builds the context stage for the project root.
//
// Top-level entries are kept unless they are the ignore file, the build
// output directory, git metadata or a tagged cache directory. When anything
// is excluded, a fresh ignore file listing every excluded entry is written
// into the root so the engine never transfers it.
func (w Workspace) Build(ctx context.Context, env Env) (stage.Result, error) {
	root := filepath.Clean(w.Root)
	if err := checkUTF8(root); err != nil {
		return stage.Result{}, err
	}

	base := filepath.Base(root)
	if base == string(filepath.Separator) || base == "." || base == "" {
		return stage.Result{}, failure.Wrapf(failure.ErrBug, "%w: workspace root %q", ErrNoName, w.Root)
	}

	keep, exclude, err := partition(root)
	if err != nil {
		return stage.Result{}, err
	}

	if len(exclude) > 0 {
		if err := writeIgnore(root, exclude); err != nil {
			return stage.Result{}, err
		}
	}

	sum := digest.SHA256.FromString(strings.Join(keep, "\n"))
	name := stage.Sanitize("cwd-" + base + "-" + sum.Encoded()[:16])

	mounts := make([]stage.Mount, 0, len(keep))
	for _, entry := range keep {
		mounts = append(mounts, stage.Mount{From: name, Source: entry, Target: "/" + entry, ReadOnly: true})
	}

	return stage.Result{
		Stage: stage.Stage{
			Name:    name,
			Mounts:  mounts,
			Context: &stage.Context{Name: name, Dir: root},
			Network: stage.None,
		},
		Mount: "/",
	}, nil
}

// Splits the root's immediate entries into kept and excluded names, both in
// lexical order.
func partition(root string) (keep, exclude []string, err error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, failure.Wrapf(failure.ErrUnavailable, "%w: %w", ErrWorkspace, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if err := checkUTF8(filepath.Join(root, name)); err != nil {
			return nil, nil, err
		}

		reason, err := excludeReason(root, entry)
		if err != nil {
			return nil, nil, err
		}

		if reason == "" {
			slog.Debug("workspace entry kept", "name", name)
			keep = append(keep, name)
			continue
		}

		slog.Debug("workspace entry excluded", "name", name, "reason", reason)
		exclude = append(exclude, name)
	}

	return keep, exclude, nil
}

// Returns why entry is excluded from the context, or "" when it is kept.
func excludeReason(root string, entry fs.DirEntry) (string, error) {
	switch entry.Name() {
	case IgnoreFile:
		return "regenerated", nil
	case virtual.OutputDirName:
		return "build output", nil
	case ".git":
		return "git metadata", nil
	}

	if !entry.IsDir() {
		return "", nil
	}

	_, err := os.Stat(filepath.Join(root, entry.Name(), CacheMarker))
	switch {
	case err == nil:
		return "cache directory", nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", failure.Wrapf(failure.ErrUnavailable, "%w: %w", ErrWorkspace, err)
	}
}

// Writes the ignore file for the excluded names, plus the file itself.
func writeIgnore(root string, exclude []string) error {
	lines := make([]string, 0, len(exclude)+1)
	for _, name := range exclude {
		lines = append(lines, "/"+name)
	}
	lines = append(lines, "/"+IgnoreFile)

	slices.Sort(lines)
	lines = slices.Compact(lines)

	p := filepath.Join(root, IgnoreFile)
	if err := os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), paths.DefaultFileMode); err != nil {
		return failure.Wrapf(failure.ErrUnavailable, "%w: %w", ErrWorkspace, err)
	}

	return nil
}
