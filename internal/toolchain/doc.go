// Package toolchain builds the stage that supplies the Rust compiler to every
// other stage.
//
// A [Toolchain] is either an [Image], a pre-built image used as-is, or a
// [Descriptor] of the compiler in use on this machine, as reported by
// "rustc -vV". Stable descriptors map to the official slim image for that
// release. Nightly and beta descriptors are bootstrapped: a first stage
// fetches rustup-init for the host architecture with a pinned checksum, a
// second installs build prerequisites into the base OS image, runs the
// installer for "<channel>-<date>", and opens up the toolchain directories so
// later stages running as another user can write into them.
//
// Before rendering, the orchestrator locks [Toolchain.Base] to a digest and
// threads it back with [Toolchain.WithBase], so the text stays reproducible
// when the upstream tag moves.
//
// Example usage:
//
//	desc, err := toolchain.Resolve(ctx, command.Exec{})
//	if err != nil {
//	    return err
//	}
//
//	locked, err := locker.Lock(ctx, desc.Base())
//	if err != nil {
//	    return err
//	}
//
//	block, err := desc.WithBase(locked).Block()
package toolchain
