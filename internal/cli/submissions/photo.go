package submissions

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/storeduty/internal/cli"
)

type PhotoCmd struct {
	ID     string `arg:"" help:"Submission id."`
	Output string `short:"o" help:"Write the photo here. Defaults to <id>.jpg." type:"path"`
}

func (c *PhotoCmd) Run(ctx *cli.Context) error {
	data, err := ctx.Service().Evidence(context.Background(), c.ID)
	if err != nil {
		return err
	}
	out := c.Output
	if out == "" {
		out = c.ID + ".jpg"
	}
	if err := os.WriteFile(out, data, 0600); err != nil {
		return fmt.Errorf("failed to write photo: %w", err)
	}
	fmt.Printf("✓ Photo for %s saved to %s (%.1f KB)\n", c.ID, out, float64(len(data))/1024.0)
	return nil
}
