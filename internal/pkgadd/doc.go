// Package pkgadd builds the stage that installs extra OS packages on top of
// another stage.
//
// The stage does not know which distribution the preceding stage runs. It
// mounts the xx helper binaries (https://github.com/tonistiigi/xx) from an
// installer image, checks for apk, apt and apt-get in that order, and runs
// the first one found with its own package list. Lists for the other
// managers are ignored.
//
// Example usage:
//
//	spec := pkgadd.Spec{Apt: []string{"libssl-dev", "pkg-config"}}
//	if !spec.IsEmpty() {
//	    res := spec.Build(pkgadd.DefaultInstaller, toolchain.BaseName)
//	    fmt.Print(res.Block)
//	}
package pkgadd
