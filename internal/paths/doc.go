// Provides platform-appropriate default paths.
//
// The settings file follows XDG conventions on Linux and platform-native
// conventions on macOS and Windows, under a "greenhouse" subdirectory. The
// cargo home fallback matches what cargo itself uses when CARGO_HOME is
// unset.
package paths
