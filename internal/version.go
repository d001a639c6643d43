package internal

import (
	"fmt"
	"strings"

	"github.com/containerd/platforms"
)

// Binary name, used for the command tree, log prefix and settings directory.
const Name = "greenhouse"

const (

	// Placeholder for a linker variable that was never set.
	undefined = "(undefined)"

	// Branch whose builds carry no stage suffix in the version string.
	releaseBranch = "main"
)

var (
	version   = "" // Release number, with or without a "v" prefix.
	branch    = "" // Branch the binary was built from.
	gitCommit = "" // Commit the binary was built from.
)

// Returns the release number without its "v" prefix, or "(undefined)".
func Version() string {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		return undefined
	}
	return strings.TrimPrefix(v, "v")
}

// Returns the commit the binary was built from, or "(undefined)".
func GitCommit() string {
	if c := strings.TrimSpace(gitCommit); c != "" {
		return c
	}
	return undefined
}

// Reports whether the binary was built outside the release pipeline, which
// sets every linker variable.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" ||
		strings.TrimSpace(branch) == "" ||
		strings.TrimSpace(gitCommit) == ""
}

// Returns the host platform in "os/arch[/variant]" form.
func Platform() string {
	return platforms.Format(platforms.DefaultSpec())
}

// Returns a one-line description of the build.
//
// Release builds render as "<version>[+<branch>] <commit> [<platform>]"; local
// builds render as "(local) [<platform>]".
func VersionString() string {
	if IsLocal() {
		return fmt.Sprintf("(local) [%s]", Platform())
	}

	suffix := ""
	if b := strings.ToLower(strings.TrimSpace(branch)); b != releaseBranch {
		suffix = "+" + b
	}

	return fmt.Sprintf("%s%s %s [%s]", Version(), suffix, GitCommit(), Platform())
}
