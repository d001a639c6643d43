// Package source builds the stages that provide the source code a compilation
// reads.
//
// Three kinds of sources implement [Source]:
//
//   - [Registry] fetches a published crate by URL, pinned to the checksum of
//     the archive cargo already downloaded, and unpacks it.
//   - [Git] checks out a git dependency at the exact commit cargo fetched
//     into its local database.
//   - [Workspace] exposes the project's own files as a named build context.
//
// Every builder is deterministic in its inputs: the same crate version,
// commit or file set yields the same stage name and equivalent text, so the
// build engine can share cache entries across projects and machines. Paths
// that reach the generated text go through [virtual.Context] first.
//
// Example usage:
//
//	env := source.Env{
//	    Virtual: virtual.New(targetDir, cargoHome),
//	    Runner:  command.Exec{},
//	}
//
//	res, err := source.Registry{
//	    Name:     "pico-args",
//	    Version:  "0.5.0",
//	    Checkout: checkout,
//	}.Build(ctx, env)
package source
