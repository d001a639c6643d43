package toolchain

import (
	"fmt"
	"strings"
	"time"

	"github.com/containerd/platforms"
	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/image"
	"github.com/cruciblehq/greenhouse/internal/stage"
)

// Release channel of a compiler.
type Channel string

const (
	Stable  Channel = "stable"
	Beta    Channel = "beta"
	Nightly Channel = "nightly"
)

// rustup release whose installers are pinned below.
const rustupVersion = "1.27.1"

const (

	// Home directories of the installed toolchain.
	RustupHome = "/usr/local/rustup"
	CargoHome  = "/usr/local/cargo"
)

// OS image nightly and beta toolchains are installed into by default.
var DefaultBase = image.MustNew("docker-image://docker.io/library/debian:12-slim")

// rustup-init target triple and SHA-256 per supported architecture.
var installers = map[string]struct {
	target   string
	checksum string
}{
	"amd64": {"x86_64-unknown-linux-gnu", "6aeece6993e902708983b209d04c0d1dbb14ebb405ddb87def578d41f920f56d"},
	"arm64": {"aarch64-unknown-linux-gnu", "1cffbf51e63e634c746f741de50649bbbcbd9dbe1de363c9ecef64e278dba2b2"},
}

// Packages the installed toolchain needs to link.
var prerequisites = []string{"ca-certificates", "gcc", "libc6-dev"}

// A compiler described by its self-reported version info.
type Descriptor struct {
	Version   string     // Release, e.g. "1.80.0-nightly".
	Commit    string     // Commit hash the compiler was built from.
	Date      string     // Commit date, "YYYY-MM-DD".
	Channel   Channel    // Release channel.
	BaseImage *image.Ref // OS image to install the toolchain into instead of the default.
	Arch      string     // Architecture to install for. Empty uses the host's.

	locked *image.Ref // Digest-pinned form of the base, set by WithBase.
}

// Returns [BaseName].
func (d Descriptor) Name() stage.Name {
	return BaseName
}

// Returns the image the toolchain stage starts from.
//
// A base set by [Descriptor.WithBase] wins, then the OS image override.
// Otherwise stable releases use the official slim image for the release and
// other channels use [DefaultBase].
func (d Descriptor) Base() image.Ref {
	switch {
	case d.locked != nil:
		return *d.locked
	case d.BaseImage != nil:
		return *d.BaseImage
	case d.Channel == Stable:
		return image.MustNew(fmt.Sprintf("%sdocker.io/library/rust:%s-slim", image.Scheme, d.Version))
	}
	return DefaultBase
}

// Returns a copy of the descriptor starting from ref, normally the locked
// form of [Descriptor.Base]. Whether the toolchain is bootstrapped does not
// change.
func (d Descriptor) WithBase(ref image.Ref) Toolchain {
	d.locked = &ref
	return d
}

// Reports whether the stage installs the toolchain with rustup rather than
// starting from an image that already has it.
func (d Descriptor) bootstrap() bool {
	return d.Channel != Stable || d.BaseImage != nil
}

// Returns the rustup toolchain name, e.g. "nightly-2024-06-01".
//
// Nightly and beta artifacts are published the day after their commit date.
func (d Descriptor) ToolchainName() (string, error) {
	if d.Channel == Stable {
		return d.Version, nil
	}

	date, err := time.Parse(time.DateOnly, d.Date)
	if err != nil {
		return "", failure.Wrapf(failure.ErrParse, "%w: commit date %q", ErrVersionInfo, d.Date)
	}

	return fmt.Sprintf("%s-%s", d.Channel, date.AddDate(0, 0, 1).Format(time.DateOnly)), nil
}

// Renders the toolchain stage.
//
// Stable descriptors without an OS image override render a single FROM line.
// Everything else renders the installer stage followed by the bootstrap
// stage, which installs the release into the OS image.
func (d Descriptor) Block() (string, error) {
	base := d.Base()
	if !d.bootstrap() {
		return stage.From(base.Path(), BaseName), nil
	}

	arch := d.Arch
	if arch == "" {
		arch = platforms.DefaultSpec().Architecture
	}
	installer, ok := installers[arch]
	if !ok {
		return "", failure.Wrapf(failure.ErrBug, "%w: %q", ErrUnsupportedArch, arch)
	}

	name, err := d.ToolchainName()
	if err != nil {
		return "", err
	}

	block := stage.From("scratch", InstallerName) +
		fmt.Sprintf("ADD --chmod=0755 --checksum=sha256:%s https://static.rust-lang.org/rustup/archive/%s/%s/rustup-init /rustup-init\n",
			installer.checksum, rustupVersion, installer.target) +
		"\n" +
		stage.From(base.Path(), BaseName) +
		"ENV RUSTUP_HOME=" + RustupHome + " \\\n" +
		"    CARGO_HOME=" + CargoHome + " \\\n" +
		"    PATH=" + CargoHome + "/bin:$PATH\n" +
		stage.Run(
			[]string{
				stage.Default.Flag(),
				stage.Mount{From: InstallerName, Source: "/rustup-init", Target: "/rustup-init", ReadOnly: true}.Flag(),
			},
			"set -eux",
			"apt-get update",
			"apt-get install -y --no-install-recommends "+strings.Join(prerequisites, " "),
			fmt.Sprintf("/rustup-init -y --no-modify-path --profile minimal --default-toolchain %s --default-host %s", name, installer.target),
			"chmod -R a+w $RUSTUP_HOME $CARGO_HOME",
			"rustup --version",
			"cargo --version",
			"rustc --version",
		)

	return block, nil
}
