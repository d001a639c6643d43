// Package command runs the short external queries stage builders depend on
// (git metadata, cargo project location, compiler version).
//
// Every invocation is bounded by a fixed timeout and, on Linux, the child is
// killed if this process dies, so no query outlives the build-plan
// construction that issued it. A hung child is reported as
// [failure.ErrTimeout] and is not retried.
package command
