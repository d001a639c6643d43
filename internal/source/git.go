package source

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/stage"
	"github.com/cruciblehq/greenhouse/internal/toolchain"
)

// Prefix of the remote URL of every checkout cargo creates.
const fileURLPrefix = "file:///"

// A git dependency checked out by cargo.
type Git struct {
	Checkout string // Checkout directory under cargo's git/checkouts.
}

// Builds the stage that fetches the checked-out commit.
//
// The commit and repository come from the fetch head of the database the
// checkout was cloned from, never from the checkout's working tree.
func (g Git) Build(ctx context.Context, env Env) (stage.Result, error) {
	if err := checkUTF8(g.Checkout); err != nil {
		return stage.Result{}, err
	}

	out, err := env.Runner.Run(ctx, "git", "-C", g.Checkout, "config", "--get", "remote.origin.url")
	if err != nil {
		return stage.Result{}, err
	}

	remote := strings.TrimSpace(out)
	if !strings.HasPrefix(remote, fileURLPrefix) {
		return stage.Result{}, failure.Wrapf(failure.ErrBug, "%w: %s has remote %q", ErrNotCargoCache, g.Checkout, remote)
	}

	file := filepath.Join(strings.TrimPrefix(remote, "file://"), "FETCH_HEAD")
	data, err := os.ReadFile(file)
	if err != nil {
		return stage.Result{}, failure.Wrapf(failure.ErrUnavailable, "reading %s: %w", file, err)
	}
	if err := checkUTF8(string(data)); err != nil {
		return stage.Result{}, err
	}

	commit, repo, err := ParseFetchHead(string(data))
	if err != nil {
		return stage.Result{}, err
	}

	dir := filepath.Base(filepath.Dir(g.Checkout))
	name := stage.Sanitize("checkout-" + dir + "-" + commit)

	block := stage.From("scratch", name) +
		"ADD --keep-git-dir=false " + repo + "#" + commit + " /\n"

	target := path.Join(toolchain.CargoHome, "git", "checkouts", dir, filepath.Base(g.Checkout))

	return stage.Result{
		Stage: stage.Stage{
			Name:    name,
			Mounts:  []stage.Mount{{From: name, Source: "/", Target: target, ReadOnly: true}},
			Network: stage.None,
		},
		Mount: "/",
		Block: block,
	}, nil
}

// Returns the commit and repository URL recorded on the first line of a
// FETCH_HEAD file.
//
// Two layouts are accepted:
//
//	<commit>\t\t<url>
//	<commit>\t\t'<ref>' of <url>
//
// Anything else is a [failure.ErrParse] quoting the line.
func ParseFetchHead(text string) (commit, url string, err error) {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimRight(line, "\r")

	commit, rest, ok := strings.Cut(line, "\t\t")
	if !ok {
		return "", "", fetchHeadError(line)
	}

	if strings.HasPrefix(rest, "'") {
		_, after, ok := strings.Cut(rest, "' of ")
		if !ok {
			return "", "", fetchHeadError(line)
		}
		rest = after
	}

	url = strings.TrimSpace(rest)
	if !isCommit(commit) || url == "" || strings.ContainsAny(url, " \t") {
		return "", "", fetchHeadError(line)
	}

	return commit, url, nil
}

func fetchHeadError(line string) error {
	return failure.Wrapf(failure.ErrParse, "%w: %q", ErrFetchHead, line)
}

// Reports whether s is a full SHA-1 or SHA-256 object name.
func isCommit(s string) bool {
	if len(s) != 40 && len(s) != 64 {
		return false
	}
	for _, r := range s {
		if !('0' <= r && r <= '9' || 'a' <= r && r <= 'f') {
			return false
		}
	}
	return true
}
