// Package image validates container image references and locks them to
// immutable digests.
//
// A [Ref] is a "docker-image://" reference, the form the build engine accepts
// for syntax frontends and named contexts. It is either unlocked (at most a
// tag) or locked (a "@sha256:<hex>" suffix). Locking is one-way text
// concatenation; [Ref.Unlocked] strips everything from the "@" onward, so
// lock-then-unlock always returns the original reference.
//
// A [Locker] turns a tag into a digest. [RegistryLocker] asks the registry
// through containerd's resolver, honoring per-host mirrors, plain HTTP and
// insecure TLS settings.
//
// Example usage:
//
//	ref, err := image.New("docker-image://docker.io/library/debian:12-slim")
//	if err != nil {
//	    return err
//	}
//
//	locked, err := image.NewRegistryLocker(nil).Lock(ctx, ref)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(locked.Path()) // docker.io/library/debian:12-slim@sha256:...
package image
