package internal

import "strconv"

var (
	rawQuiet   = "false" // Linker default for quiet mode.
	rawDebug   = "false" // Linker default for debug mode.
	rawVerbose = "false" // Linker default for verbose mode.

	quiet   = parseMode(rawQuiet)
	debug   = parseMode(rawDebug)
	verbose = parseMode(rawVerbose)
)

// Parses a linker-provided mode. Unparseable values leave the mode off.
func parseMode(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

// Reports whether quiet mode is enabled.
func IsQuiet() bool { return quiet }

// Reports whether debug mode is enabled.
func IsDebug() bool { return debug }

// Reports whether verbose mode is enabled.
func IsVerbose() bool { return verbose }
