package toolchain

import (
	"github.com/cruciblehq/greenhouse/internal/image"
	"github.com/cruciblehq/greenhouse/internal/stage"
)

const (

	// Name of the stage providing the toolchain.
	BaseName stage.Name = "rust-base"

	// Name of the stage holding the verified rustup installer.
	InstallerName stage.Name = "rust-base-installer"
)

// The stage supplying the compiler toolchain.
type Toolchain interface {

	// Returns the name of the stage later stages mount from.
	Name() stage.Name

	// Returns the image the toolchain stage starts from.
	Base() image.Ref

	// Returns a copy of the toolchain starting from ref instead.
	WithBase(ref image.Ref) Toolchain

	// Renders the Dockerfile text defining [BaseName].
	Block() (string, error)
}

// A pre-built toolchain image.
type Image struct {
	Ref image.Ref
}

// Returns [BaseName].
func (i Image) Name() stage.Name {
	return BaseName
}

// Returns the image itself.
func (i Image) Base() image.Ref {
	return i.Ref
}

// Returns the toolchain backed by ref.
func (i Image) WithBase(ref image.Ref) Toolchain {
	return Image{Ref: ref}
}

// Renders "FROM <image> AS rust-base".
func (i Image) Block() (string, error) {
	return stage.From(i.Ref.Path(), BaseName), nil
}
