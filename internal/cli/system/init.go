package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/storeduty/internal/cli"
	"github.com/julianstephens/storeduty/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Delete an existing local store before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		switch storage.DetectBackend(ctx.Config) {
		case storage.BackendPostgres, storage.BackendMemory:
			return fmt.Errorf("--force only applies to file-backed stores")
		}
		path := ctx.Store.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing store: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing store: %w", err)
			}
			fmt.Printf("Deleted existing store at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing store: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized storeduty storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
