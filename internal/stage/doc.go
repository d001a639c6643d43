// Package stage models the named units of a multi-stage build description.
//
// Every stage is identified by a [Name]: a lowercase identifier restricted to
// [a-z0-9._-] that the build engine accepts after "AS". Names are derived
// from arbitrary crate metadata with [Sanitize], which never fails and is
// idempotent, so the same logical input (crate name and version, commit,
// file set) always maps to the same stage and therefore the same cache key.
//
// A [Stage] carries the mounts later stages use to read its output, an
// optional named build [Context] for stages backed by local files, and the
// [Network] policy of its RUN instructions. Builders hand the orchestrator a
// [Result]: the stage name, the path its output is mounted from, and the
// Dockerfile text that defines it.
//
// Example usage:
//
//	name := stage.Sanitize("cratesio-pico-args-0.5.0")
//	run := stage.Run(
//	    []string{stage.None.Flag(), stage.Mount{From: "rust-base", Source: "/usr", Target: "/usr", ReadOnly: true}.Flag()},
//	    "mkdir /extracted",
//	    "tar zxf /crate -C /extracted",
//	)
package stage
