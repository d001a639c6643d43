package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	appName = "greenhouse"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Default path to the settings file.
//
//	Linux:   $XDG_CONFIG_HOME/greenhouse/config.toml or ~/.config/greenhouse/config.toml
//	macOS:   ~/Library/Application Support/greenhouse/config.toml
func Settings() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Default cargo home, used when CARGO_HOME is unset.
//
//	All:     ~/.cargo
func CargoHome() string {
	return filepath.Join(xdg.Home, ".cargo")
}
