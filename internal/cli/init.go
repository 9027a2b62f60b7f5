package cli

import (
	"fmt"
	"os"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing archive before initialization."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Force {
		path := ctx.Store.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			// Close first to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing archive: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing archive: %w", err)
			}
			fmt.Printf("Deleted existing archive at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing archive: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized daylap storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
