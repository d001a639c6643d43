// Parses flags and environment and runs greenhouse commands.
//
// The root command accepts the following flags:
//
//	-q, --quiet        Suppress informational output.
//	-v, --verbose      Enable verbose output.
//	-d, --debug        Enable debug output.
//	-c, --config       Settings file ($GREENHOUSE_CONFIG).
//	    --target-dir   Build output root ($CARGO_TARGET_DIR).
//	    --cargo-home   Cargo home ($CARGO_HOME).
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity
// before the command runs. Errors are returned with virtual paths rewritten
// to the real paths of this machine.
package cli
