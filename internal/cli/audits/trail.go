package audits

import (
	"context"
	"fmt"

	"github.com/julianstephens/storeduty/internal/cli"
	"github.com/julianstephens/storeduty/internal/render"
)

type TrailCmd struct {
	ID   string `arg:"" help:"Submission id."`
	JSON bool   `help:"Print the adjustments as JSON, suitable for reapply."`
}

func (c *TrailCmd) Run(ctx *cli.Context) error {
	trail, err := ctx.Service().Trail(context.Background(), c.ID)
	if err != nil {
		return err
	}
	if c.JSON {
		return cli.PrintJSON(trail)
	}
	if len(trail) == 0 {
		fmt.Printf("No adjustments recorded for %s.\n", c.ID)
		return nil
	}
	fmt.Println(render.Table(render.TrailGrid(trail)))
	return nil
}
