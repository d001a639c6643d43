package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/cruciblehq/greenhouse/internal/config"
)

// Represents the 'greenhouse config' command group.
type ConfigCmd struct {
	Check ConfigCheckCmd `cmd:"" help:"Validate a settings file and print it in canonical form."`
}

// Represents the 'greenhouse config check' command.
type ConfigCheckCmd struct {
	File string `arg:"" help:"Settings file." type:"existingfile"`
}

// Executes the config check command.
func (c *ConfigCheckCmd) Run(ctx context.Context) error {
	settings, err := config.Load(c.File)
	if err != nil {
		return err
	}

	slog.Info("settings are valid", "path", c.File)

	return config.Encode(os.Stdout, settings)
}
