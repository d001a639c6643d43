package stage

import (
	"strings"
)

// Reads a path from another stage or build context during a RUN instruction.
type Mount struct {
	From     Name   // Stage or build context providing the files.
	Source   string // Path inside From.
	Target   string // Path inside the running stage.
	ReadOnly bool   // Whether the mount is read-only.
}

// Returns the "--mount=" RUN flag for this mount.
func (m Mount) Flag() string {
	var b strings.Builder
	b.WriteString("--mount=from=")
	b.WriteString(string(m.From))
	b.WriteString(",source=")
	b.WriteString(m.Source)
	b.WriteString(",target=")
	b.WriteString(m.Target)
	if m.ReadOnly {
		b.WriteString(",ro")
	}
	return b.String()
}

// A named build context backed by a local directory.
//
// The build engine receives it as "--build-context <name>=<dir>".
type Context struct {
	Name Name   // Name other stages mount from.
	Dir  string // Local directory transferred to the engine.
}

// Returns the build engine flag declaring this context.
func (c Context) Flag() string {
	return "--build-context=" + string(c.Name) + "=" + c.Dir
}

// A build stage description.
//
// Stages whose content comes from local files carry a [Context] instead of
// Dockerfile text; their Mounts expose the context's entries.
type Stage struct {
	Name    Name     // Stage identity.
	Mounts  []Mount  // Mounts consumers use to read this stage's output.
	Context *Context // Local build context, if any.
	Network Network  // Network policy of the stage's RUN instructions.
}

// What a stage builder returns to the orchestrator.
type Result struct {
	Stage Stage  // Stage description.
	Mount string // Path of the stage's output, mountable by later stages.
	Block string // Dockerfile text defining the stage; empty for context-only stages.
}

// Returns the stage's name.
func (r Result) Name() Name {
	return r.Stage.Name
}

// Renders a RUN instruction with flags on their own continuation lines and
// commands chained with "&&".
//
//	RUN --network=none \
//	  --mount=from=a,source=/x,target=/x \
//	    first \
//	 && second
func Run(flags []string, commands ...string) string {
	var b strings.Builder
	b.WriteString("RUN")

	for i, f := range flags {
		if i == 0 {
			b.WriteString(" ")
		} else {
			b.WriteString(" \\\n  ")
		}
		b.WriteString(f)
	}

	for i, c := range commands {
		switch {
		case i == 0 && len(flags) == 0:
			b.WriteString(" ")
		case i == 0:
			b.WriteString(" \\\n    ")
		default:
			b.WriteString(" \\\n && ")
		}
		b.WriteString(c)
	}

	b.WriteString("\n")
	return b.String()
}

// Renders "FROM <image> AS <name>".
func From(image string, name Name) string {
	return "FROM " + image + " AS " + string(name) + "\n"
}

// Normalizes a block to no leading blank lines and exactly one trailing newline.
func Trim(block string) string {
	block = strings.Trim(block, "\n")
	if block == "" {
		return ""
	}
	return block + "\n"
}
