package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/stage"
	"github.com/cruciblehq/greenhouse/internal/toolchain"
	"github.com/cruciblehq/greenhouse/internal/virtual"
	"github.com/opencontainers/go-digest"
)

const (

	// Where the unpacked crate lives inside a registry stage.
	extractDir = "/extracted"

	// Download location of published crates.
	crateURL = "https://static.crates.io/crates/%[1]s/%[1]s-%[2]s.crate"
)

// Toolchain directories the extraction step borrows tar and a shell from.
var toolchainDirs = []string{"/lib", "/lib64", "/usr"}

// A crate published on crates.io.
type Registry struct {
	Name     string // Crate name.
	Version  string // Exact version.
	Checkout string // Unpacked source directory cargo uses on this machine.
}

// Returns the name of the stage holding the crate.
//
// The name embeds the virtual index rather than the machine's, so every
// machine shares the stage.
func (r Registry) StageName() stage.Name {
	return stage.Sanitize(fmt.Sprintf("cratesio-%s-%s-%s", r.Name, r.Version, virtual.Index))
}

// Returns the path of the cached archive for r.
//
// The machine-specific index directory is read from the checkout path. When
// the checkout is outside cargo's registry sources, the index directories
// under the cache are listed in lexical order and the first one holding the
// archive is used. The chosen index is recorded in the hidden-index cell.
func (r Registry) Archive(vctx *virtual.Context) (string, error) {
	if err := checkUTF8(r.Checkout, vctx.CargoHome()); err != nil {
		return "", err
	}

	cache := filepath.Join(vctx.CargoHome(), "registry", "cache")
	file := fmt.Sprintf("%s-%s.crate", r.Name, r.Version)

	if index, ok := vctx.IndexOf(r.Checkout); ok {
		return filepath.Join(cache, index, file), nil
	}

	entries, err := os.ReadDir(cache)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", failure.Wrapf(failure.ErrUnavailable, "%w %s: %w", ErrArchive, cache, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || !virtual.IsIndex(entry.Name()) {
			continue
		}
		p := filepath.Join(cache, entry.Name(), file)
		if _, err := os.Stat(p); err == nil {
			vctx.IndexOf(p)
			return p, nil
		}
	}

	return "", failure.Wrapf(failure.ErrUnavailable, "%w: %s, no index under %s holds %s", ErrNoIndex, r.Checkout, cache, file)
}

// Builds the stage that downloads and unpacks the crate.
func (r Registry) Build(ctx context.Context, env Env) (stage.Result, error) {
	archive, err := r.Archive(env.Virtual)
	if err != nil {
		return stage.Result{}, err
	}

	sum, err := checksum(archive)
	if err != nil {
		return stage.Result{}, err
	}

	name := r.StageName()
	target := path.Join(toolchain.CargoHome, "registry", "src", virtual.Index, r.Name+"-"+r.Version)

	st := stage.Stage{
		Name:    name,
		Mounts:  []stage.Mount{{From: name, Source: extractDir, Target: target, ReadOnly: true}},
		Network: stage.None,
	}

	flags := []string{st.Network.Flag()}
	for _, dir := range toolchainDirs {
		flags = append(flags, stage.Mount{From: toolchain.BaseName, Source: dir, Target: dir, ReadOnly: true}.Flag())
	}

	block := stage.From("scratch", name) +
		fmt.Sprintf("ADD --chmod=0664 --checksum=sha256:%s %s /crate\n", sum.Encoded(), fmt.Sprintf(crateURL, r.Name, r.Version)) +
		"SHELL [\"/usr/bin/dash\", \"-c\"]\n" +
		stage.Run(flags,
			"mkdir "+extractDir,
			"tar zxf /crate --strip-components=1 -C "+extractDir,
		)

	return stage.Result{Stage: st, Mount: extractDir, Block: block}, nil
}

// Hashes the archive at p.
func checksum(p string) (digest.Digest, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", failure.Wrapf(failure.ErrUnavailable, "%w %s: %w", ErrArchive, p, err)
	}
	defer f.Close()

	sum, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", failure.Wrapf(failure.ErrUnavailable, "%w %s: %w", ErrArchive, p, err)
	}

	return sum, nil
}
