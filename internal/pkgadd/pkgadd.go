package pkgadd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/image"
	"github.com/cruciblehq/greenhouse/internal/stage"
)

// Token standing in for an empty package list.
const Placeholder = "_no_packages_"

// Image the xx helpers are mounted from by default.
var DefaultInstaller = image.MustNew("docker-image://docker.io/tonistiigi/xx:1.6.1")

// Helpers mounted from the installer image.
var binaries = []string{
	"xx-apk",
	"xx-apt",
	"xx-apt-get",
	"xx-info",
	"xx-cc",
	"xx-c++",
	"xx-ld-target",
	"xx-verify",
}

// Characters a package name or version constraint may hold. None of them
// is special to the shell.
var packagePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9+._:=~@/-]*$`)

// Packages to install, one list per package manager family.
type Spec struct {
	Apk    []string `toml:"apk,omitempty"`
	Apt    []string `toml:"apt,omitempty"`
	AptGet []string `toml:"apt-get,omitempty"`
}

// Reports whether no package is listed for any manager.
func (s Spec) IsEmpty() bool {
	return len(s.Apk) == 0 && len(s.Apt) == 0 && len(s.AptGet) == 0
}

// Checks that every listed package is safe to render into the install script.
//
// The first offending entry is reported as [failure.ErrValidation] wrapping
// [ErrInvalidPackage].
func (s Spec) Validate() error {
	for _, l := range []struct {
		manager string
		pkgs    []string
	}{{"apk", s.Apk}, {"apt", s.Apt}, {"apt-get", s.AptGet}} {
		for _, pkg := range l.pkgs {
			if pkg == Placeholder || !packagePattern.MatchString(pkg) {
				return failure.Wrapf(failure.ErrValidation, "%w: %s %q", ErrInvalidPackage, l.manager, pkg)
			}
		}
	}
	return nil
}

// Returns the name of the stage installing the packages on top of preceding.
func StageName(preceding stage.Name) stage.Name {
	return stage.Sanitize(string(preceding) + "-pkgadd")
}

// Builds the stage installing the packages on top of preceding.
//
// The block opens with a stage naming the installer image, so the helpers
// can be mounted without copying them into a layer.
func (s Spec) Build(installer image.Ref, preceding stage.Name) stage.Result {
	xx := stage.Sanitize(string(preceding) + "-xx")
	st := stage.Stage{Name: StageName(preceding), Network: stage.Default}

	flags := []string{st.Network.Flag()}
	for _, bin := range binaries {
		p := "/usr/bin/" + bin
		flags = append(flags, stage.Mount{From: xx, Source: p, Target: p, ReadOnly: true}.Flag())
	}

	block := stage.From(installer.Path(), xx) +
		"\n" +
		stage.From(string(preceding), st.Name) +
		stage.Run(flags, "set -eu", s.script())

	return stage.Result{Stage: st, Mount: "/", Block: block}
}

// Renders the package manager chain. Only the first manager found runs.
func (s Spec) script() string {
	branches := []struct {
		manager string
		install string
		pkgs    []string
	}{
		{"apk", "xx-apk add --no-cache", s.Apk},
		{"apt", "xx-apt install -y --no-install-recommends", s.Apt},
		{"apt-get", "xx-apt-get install -y --no-install-recommends", s.AptGet},
	}

	var b strings.Builder
	for i, br := range branches {
		if i == 0 {
			b.WriteString("if ")
		} else {
			b.WriteString(" elif ")
		}
		fmt.Fprintf(&b, "command -v %s >/dev/null 2>&1; then set -- %s; [ \"$1\" = %s ] || %s \"$@\";",
			br.manager, list(br.pkgs), Placeholder, br.install)
	}
	b.WriteString(" else echo 'no supported package manager' >&2; exit 1; fi")

	return b.String()
}

// Renders pkgs space-separated, or [Placeholder] when there are none.
func list(pkgs []string) string {
	if len(pkgs) == 0 {
		return Placeholder
	}
	return strings.Join(pkgs, " ")
}
