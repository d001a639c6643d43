package config

import (
	"errors"
	"io"
	"os"

	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/image"
	"github.com/cruciblehq/greenhouse/internal/pkgadd"
	"github.com/pelletier/go-toml/v2"
)

// Top-level settings document.
type Settings struct {
	Syntax         *image.Ref  `toml:"syntax,omitempty"`          // Dockerfile frontend.
	BaseImage      *image.Ref  `toml:"base-image,omitempty"`      // OS image toolchains are installed into.
	ToolchainImage *image.Ref  `toml:"toolchain-image,omitempty"` // Pre-built toolchain image. Skips detection.
	InstallerImage *image.Ref  `toml:"installer-image,omitempty"` // Image providing the xx helpers.
	Cache          Cache       `toml:"cache,omitempty"`
	Add            pkgadd.Spec `toml:"add,omitempty"`
	Daemon         Daemon      `toml:"daemon,omitempty"`
}

// Build cache import and export images.
type Cache struct {
	CacheFromImages []image.Ref `toml:"cache-from-images,omitempty"` // Imported only.
	CacheToImages   []image.Ref `toml:"cache-to-images,omitempty"`   // Exported only.
	CacheImages     []image.Ref `toml:"cache-images,omitempty"`      // Imported and exported.
}

// Returns the configured frontend, or [image.Default].
func (s Settings) SyntaxImage() image.Ref {
	if s.Syntax == nil {
		return image.Default
	}
	return *s.Syntax
}

// Returns the configured installer image, or [pkgadd.DefaultInstaller].
func (s Settings) Installer() image.Ref {
	if s.InstallerImage == nil {
		return pkgadd.DefaultInstaller
	}
	return *s.InstallerImage
}

// Returns every image the build imports cache from.
func (c Cache) Imports() []image.Ref {
	return append(append([]image.Ref(nil), c.CacheFromImages...), c.CacheImages...)
}

// Returns every image the build exports cache to.
func (c Cache) Exports() []image.Ref {
	return append(append([]image.Ref(nil), c.CacheToImages...), c.CacheImages...)
}

// Reads the settings file at path.
//
// A missing file is reported as [failure.ErrUnavailable] wrapping
// [os.ErrNotExist], so callers reading an optional default can tell it apart.
func Load(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, failure.Wrapf(failure.ErrUnavailable, "%w %s: %w", ErrRead, path, err)
	}
	defer f.Close()

	var s Settings
	if err := Decode(f, &s); err != nil {
		return Settings{}, err
	}
	if err := s.Daemon.Validate(); err != nil {
		return Settings{}, err
	}
	if err := s.Add.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Decodes a TOML document into v, rejecting unknown keys.
//
// Works for [Settings] and for any of its tables on their own.
func Decode(r io.Reader, v any) error {
	err := toml.NewDecoder(r).DisallowUnknownFields().Decode(v)
	if err == nil {
		return nil
	}

	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		return failure.Wrapf(failure.ErrValidation, "%w:\n%s", ErrUnknownKey, strict.String())
	}

	var decode *toml.DecodeError
	if errors.As(err, &decode) {
		row, col := decode.Position()
		return failure.Wrapf(failure.ErrParse, "%w at line %d, column %d: %w", ErrDecode, row, col, err)
	}

	return failure.Wrapf(failure.ErrParse, "%w: %w", ErrDecode, err)
}

// Encodes v as TOML, omitting empty fields.
func Encode(w io.Writer, v any) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(v); err != nil {
		return failure.Wrapf(failure.ErrValidation, "%w: %w", ErrEncode, err)
	}
	return nil
}
