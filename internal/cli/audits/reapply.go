package audits

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/julianstephens/storeduty/internal/cli"
	"github.com/julianstephens/storeduty/internal/models"
)

// ReapplyCmd replays adjustments exported with `trail --json`, for example
// after restoring an older backup. Adjustments already in the trail are
// skipped.
type ReapplyCmd struct {
	File string `arg:"" help:"JSON file holding an array of adjustments." type:"existingfile"`
}

func (c *ReapplyCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	var adjustments []models.Adjustment
	if err := json.Unmarshal(data, &adjustments); err != nil {
		return fmt.Errorf("failed to parse %s: %w", c.File, err)
	}

	applied, skipped := 0, 0
	for _, adj := range adjustments {
		sub, ok, err := ctx.Service().Reapply(context.Background(), adj)
		if err != nil {
			return fmt.Errorf("adjustment %s: %w", adj.ID, err)
		}
		if !ok {
			skipped++
			continue
		}
		applied++
		fmt.Printf("  %s → %s %s, points %d\n", adj.ID, sub.ID, sub.Status, sub.Points)
	}
	fmt.Printf("✓ %d applied, %d already present\n", applied, skipped)
	return nil
}
