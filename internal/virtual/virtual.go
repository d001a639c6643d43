package virtual

import (
	"log/slog"
	"regexp"
	"strings"
	"sync/atomic"
)

const (

	// Host-independent stand-in for the build-output root.
	OutputRoot = "/tmp/greenhouse/target"

	// Conventional name of the build-output directory inside a project.
	OutputDirName = "target"

	// Host-independent stand-in for the registry index directory name.
	Index = "index.crates.io-0000000000000000"
)

// Matches a registry index directory name as cargo creates it.
var indexPattern = regexp.MustCompile(`index\.crates\.io-[0-9a-f]{16}`)

// Reports whether name is a real registry index directory name.
func IsIndex(name string) bool {
	return name != Index && indexPattern.FindString(name) == name
}

// Process-wide virtualization state.
//
// The output root is fixed at construction. The real index name is recorded
// at most once; later observations of a different name are still hidden but
// never replace the first one.
type Context struct {
	outputRoot string
	cargoHome  string
	index      atomic.Pointer[string]
}

// Creates a context for the given build-output root and cargo home.
//
// An empty outputRoot disables output-directory virtualization.
func New(outputRoot, cargoHome string) *Context {
	return &Context{
		outputRoot: strings.TrimRight(outputRoot, "/"),
		cargoHome:  strings.TrimRight(cargoHome, "/"),
	}
}

// Returns the real build-output root.
func (c *Context) OutputRoot() string {
	return c.outputRoot
}

// Returns the cargo home directory holding the registry and git caches.
func (c *Context) CargoHome() string {
	return c.cargoHome
}

// Replaces the real build-output root with [OutputRoot].
func (c *Context) Virtualize(s string) string {
	if c.outputRoot == "" {
		return s
	}
	return strings.ReplaceAll(s, c.outputRoot, OutputRoot)
}

// Replaces [OutputRoot] with the real build-output root.
func (c *Context) Unvirtualize(s string) string {
	if c.outputRoot == "" {
		return s
	}
	return strings.ReplaceAll(s, OutputRoot, c.outputRoot)
}

// Replaces every real index directory name in s with [Index], recording the
// first one seen.
func (c *Context) Hide(s string) string {
	return indexPattern.ReplaceAllStringFunc(s, func(segment string) string {
		if segment != Index {
			c.observe(segment)
		}
		return Index
	})
}

// Replaces [Index] with the recorded real index name. Identity until a real
// name has been observed.
func (c *Context) Unhide(s string) string {
	name := c.index.Load()
	if name == nil {
		return s
	}
	return strings.ReplaceAll(s, Index, *name)
}

// Returns the recorded real index name, if any.
func (c *Context) RealIndex() (string, bool) {
	name := c.index.Load()
	if name == nil {
		return "", false
	}
	return *name, true
}

// Finds the real index name in a path, records it, and returns it.
func (c *Context) IndexOf(path string) (string, bool) {
	for _, segment := range indexPattern.FindAllString(path, -1) {
		if segment != Index {
			c.observe(segment)
			return segment, true
		}
	}
	return "", false
}

// Records segment as the real index name unless one is already set.
func (c *Context) observe(segment string) {
	if c.index.CompareAndSwap(nil, &segment) {
		slog.Debug("registry index recorded", "index", segment)
	}
}
