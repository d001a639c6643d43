package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/greenhouse/internal"
)

// Represents the 'greenhouse version' command, which prints the build
// description to stdout and exits.
type VersionCmd struct{}

// Prints [internal.VersionString].
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
