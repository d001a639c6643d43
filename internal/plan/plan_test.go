package plan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/image"
	"github.com/cruciblehq/greenhouse/internal/pkgadd"
	"github.com/cruciblehq/greenhouse/internal/source"
	"github.com/cruciblehq/greenhouse/internal/stage"
	"github.com/cruciblehq/greenhouse/internal/toolchain"
	"github.com/cruciblehq/greenhouse/internal/virtual"
	"github.com/google/go-cmp/cmp"
	"github.com/opencontainers/go-digest"
)

var rustImage = image.MustNew("docker-image://docker.io/library/rust:1.79.0-slim")

// Pins every reference to the digest of its own text and counts calls.
type fakeLocker struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (l *fakeLocker) Lock(ctx context.Context, ref image.Ref) (image.Ref, error) {
	l.mu.Lock()
	l.calls = append(l.calls, ref.String())
	l.mu.Unlock()

	if l.err != nil {
		return image.Ref{}, l.err
	}
	return ref.Lock(digest.FromString(ref.String()).String())
}

// Returns a fixed block after a delay.
type fakeSource struct {
	name  stage.Name
	block string
	delay time.Duration
	err   error
}

func (f fakeSource) Build(ctx context.Context, env source.Env) (stage.Result, error) {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return stage.Result{}, ctx.Err()
	}
	if f.err != nil {
		return stage.Result{}, f.err
	}
	return stage.Result{Stage: stage.Stage{Name: f.name}, Mount: "/", Block: f.block}, nil
}

func TestBuildOrder(t *testing.T) {
	opts := Options{
		Toolchain: toolchain.Image{Ref: rustImage},
		Sources: []source.Source{
			fakeSource{name: "a", block: "FROM scratch AS a\n", delay: 30 * time.Millisecond},
			fakeSource{name: "b", block: "\n\nFROM scratch AS b\n\n"},
		},
	}

	p, err := Build(context.Background(), source.Env{}, opts)
	if err != nil {
		t.Fatal(err)
	}

	want := "# syntax=docker.io/docker/dockerfile:1\n" +
		"\n" +
		"FROM docker.io/library/rust:1.79.0-slim AS rust-base\n" +
		"\n" +
		"FROM scratch AS a\n" +
		"\n" +
		"FROM scratch AS b\n"
	if diff := cmp.Diff(want, p.Dockerfile); diff != "" {
		t.Fatalf("Dockerfile mismatch (-want +got):\n%s", diff)
	}

	var names []stage.Name
	for _, s := range p.Stages {
		names = append(names, s.Name())
	}
	if diff := cmp.Diff([]stage.Name{"rust-base", "a", "b"}, names); diff != "" {
		t.Fatalf("stage order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildLocksOnce(t *testing.T) {
	locker := &fakeLocker{}
	opts := Options{
		Toolchain: toolchain.Image{Ref: rustImage},
		Add:       pkgadd.Spec{Apt: []string{"libssl-dev"}},
		Installer: pkgadd.DefaultInstaller,
		Sources: []source.Source{
			fakeSource{name: "a", block: "FROM scratch AS a\n"},
			fakeSource{name: "b", block: "FROM scratch AS b\n"},
		},
		Locker: locker,
	}

	p, err := Build(context.Background(), source.Env{}, opts)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{image.Default.String(), rustImage.String(), pkgadd.DefaultInstaller.String()}
	if diff := cmp.Diff(want, locker.calls); diff != "" {
		t.Fatalf("Lock calls mismatch (-want +got):\n%s", diff)
	}

	lockedRust, _ := rustImage.Lock(digest.FromString(rustImage.String()).String())
	if !strings.Contains(p.Dockerfile, "FROM "+lockedRust.Path()+" AS rust-base\n") {
		t.Fatalf("Dockerfile does not use the locked toolchain image:\n%s", p.Dockerfile)
	}
	if !strings.HasPrefix(p.Dockerfile, "# syntax=docker.io/docker/dockerfile:1@sha256:") {
		t.Fatalf("Dockerfile does not use the locked frontend:\n%s", p.Dockerfile)
	}
	if !strings.Contains(p.Dockerfile, "FROM rust-base AS rust-base-pkgadd\n") {
		t.Fatalf("Dockerfile has no package stage:\n%s", p.Dockerfile)
	}
}

func TestBuildLockFailure(t *testing.T) {
	want := failure.Wrapf(failure.ErrUnavailable, "registry down")
	opts := Options{
		Toolchain: toolchain.Image{Ref: rustImage},
		Locker:    &fakeLocker{err: want},
	}

	if _, err := Build(context.Background(), source.Env{}, opts); !errors.Is(err, want) || !errors.Is(err, ErrPlan) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestBuildSourceFailure(t *testing.T) {
	want := failure.Wrapf(failure.ErrParse, "bad fetch head")
	opts := Options{
		Toolchain: toolchain.Image{Ref: rustImage},
		Sources: []source.Source{
			fakeSource{name: "slow", block: "FROM scratch AS slow\n", delay: time.Minute},
			fakeSource{name: "bad", err: want},
		},
	}

	start := time.Now()
	p, err := Build(context.Background(), source.Env{}, opts)
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if p != nil {
		t.Fatalf("Build returned a partial plan: %+v", p)
	}
	if time.Since(start) > 10*time.Second {
		t.Fatal("failure did not cancel the remaining sources")
	}
}

func TestBuildDuplicateStages(t *testing.T) {
	opts := Options{
		Toolchain: toolchain.Image{Ref: rustImage},
		Sources: []source.Source{
			fakeSource{name: "a", block: "FROM scratch AS a\n"},
			fakeSource{name: "a", block: "FROM scratch AS a\n"},
		},
	}

	p, err := Build(context.Background(), source.Env{}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(p.Dockerfile, "AS a\n"); got != 1 {
		t.Fatalf("stage a emitted %d times, want 1:\n%s", got, p.Dockerfile)
	}

	opts.Sources[1] = fakeSource{name: "a", block: "FROM busybox AS a\n"}
	if _, err := Build(context.Background(), source.Env{}, opts); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestBuildNoToolchain(t *testing.T) {
	if _, err := Build(context.Background(), source.Env{}, Options{}); !errors.Is(err, failure.ErrBug) {
		t.Fatalf("err = %v, want ErrBug", err)
	}
}

func TestBuildInvalidPackage(t *testing.T) {
	locker := &fakeLocker{}
	opts := Options{
		Toolchain: toolchain.Image{Ref: rustImage},
		Add:       pkgadd.Spec{Apt: []string{"libssl-dev", "foo;rm -rf /"}},
		Installer: pkgadd.DefaultInstaller,
		Locker:    locker,
	}

	p, err := Build(context.Background(), source.Env{}, opts)
	if !errors.Is(err, pkgadd.ErrInvalidPackage) || !errors.Is(err, failure.ErrValidation) {
		t.Fatalf("err = %v, want ErrInvalidPackage", err)
	}
	if p != nil {
		t.Fatalf("Build returned a plan: %+v", p)
	}
	if len(locker.calls) != 0 {
		t.Fatalf("Lock called %d times before validation, want 0", len(locker.calls))
	}
}

func TestBuildArgs(t *testing.T) {
	cache := image.MustNew("docker-image://ghcr.io/acme/cache:main")
	p := &Plan{
		Contexts:  []stage.Context{{Name: "cwd-project-0123456789abcdef", Dir: "/home/user/project"}},
		CacheFrom: []image.Ref{cache},
		CacheTo:   []image.Ref{cache},
	}

	want := []string{
		"--build-context=cwd-project-0123456789abcdef=/home/user/project",
		"--cache-from=type=registry,ref=ghcr.io/acme/cache:main",
		"--cache-to=type=registry,ref=ghcr.io/acme/cache:main,mode=max",
	}
	if diff := cmp.Diff(want, p.BuildArgs()); diff != "" {
		t.Fatalf("BuildArgs mismatch (-want +got):\n%s", diff)
	}
}

// A registry crate and the workspace it is used from, end to end.
func TestBuildRegistryAndWorkspace(t *testing.T) {
	tmp := t.TempDir()
	home := filepath.Join(tmp, "cargo")
	index := "index.crates.io-6f17d22bba15001f"

	archive := filepath.Join(home, "registry", "cache", index, "pico-args-0.5.0.crate")
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archive, []byte("pico-args"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := filepath.Join(tmp, "project")
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}

	env := source.Env{Virtual: virtual.New(filepath.Join(root, "target"), home)}
	opts := Options{
		Toolchain: toolchain.Image{Ref: rustImage},
		Sources: []source.Source{
			source.Workspace{Root: root},
			source.Registry{Name: "pico-args", Version: "0.5.0", Checkout: filepath.Join(home, "registry", "src", index, "pico-args-0.5.0")},
		},
	}

	p, err := Build(context.Background(), env, opts)
	if err != nil {
		t.Fatal(err)
	}

	sum := digest.FromString("pico-args")
	if !strings.Contains(p.Dockerfile, "ADD --chmod=0664 --checksum=sha256:"+sum.Encoded()+" https://static.crates.io/crates/pico-args/pico-args-0.5.0.crate /crate\n") {
		t.Fatalf("Dockerfile has no pinned crate download:\n%s", p.Dockerfile)
	}
	if len(p.Contexts) != 1 || p.Contexts[0].Dir != root {
		t.Fatalf("Contexts = %+v, want the project root", p.Contexts)
	}
	if strings.Contains(p.Dockerfile, index) {
		t.Fatalf("Dockerfile leaks the machine index:\n%s", p.Dockerfile)
	}
}

// A crate whose checkout carries no index comes before one that does. The
// result must not depend on which source finishes first.
func TestBuildRegistryIndexDeterministic(t *testing.T) {
	home := t.TempDir()
	index := "index.crates.io-6f17d22bba15001f"

	for _, name := range []string{"a-1.0.0.crate", "b-1.0.0.crate"} {
		p := filepath.Join(home, "registry", "cache", index, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	opts := Options{
		Toolchain: toolchain.Image{Ref: rustImage},
		Sources: []source.Source{
			source.Registry{Name: "a", Version: "1.0.0", Checkout: "/vendor/a-1.0.0"},
			source.Registry{Name: "b", Version: "1.0.0", Checkout: filepath.Join(home, "registry", "src", index, "b-1.0.0")},
		},
	}

	var first string
	for i := 0; i < 50; i++ {
		env := source.Env{Virtual: virtual.New("", home)}
		p, err := Build(context.Background(), env, opts)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if i == 0 {
			first = p.Dockerfile
			continue
		}
		if p.Dockerfile != first {
			t.Fatalf("run %d produced a different Dockerfile:\n%s", i, cmp.Diff(first, p.Dockerfile))
		}
	}
}
