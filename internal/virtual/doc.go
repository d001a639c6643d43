// Package virtual keeps generated stage text independent of the host.
//
// Two textual substitutions are applied. The build-output root (read once
// from the environment) is swapped with a fixed virtual root, so paths the
// compiler emits inside stages are identical on every machine. The registry
// index directory name (for example "index.crates.io-1949cf8c6b5b557f"),
// whose hash suffix differs between cargo installations, is swapped with a
// fixed placeholder. The first real index name observed is remembered so it
// can be put back when showing paths to the user.
//
// Both substitutions are plain substring replacements and are identity until
// their trigger has happened: an output root was configured, or a real index
// name was seen.
//
// The state lives in a [Context] created once at startup and passed to every
// stage builder:
//
//	vctx := virtual.New(os.Getenv("CARGO_TARGET_DIR"), cargoHome)
//	p := vctx.Hide(vctx.Virtualize(path))
//	fmt.Println(vctx.Unvirtualize(vctx.Unhide(p)))
package virtual
