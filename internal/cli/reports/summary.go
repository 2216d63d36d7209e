package reports

import (
	"context"
	"fmt"

	"github.com/julianstephens/storeduty/internal/cli"
	"github.com/julianstephens/storeduty/internal/render"
)

type SummaryCmd struct {
	Date string `arg:"" optional:"" help:"Day to summarize (YYYY-MM-DD). Defaults to today."`
	JSON bool   `help:"Print JSON."`
}

func (c *SummaryCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	view := ctx.Service().Summary(context.Background(), day)
	if c.JSON {
		return cli.PrintJSON(view)
	}
	if view.Degraded {
		fmt.Println(render.Degraded())
	}
	fmt.Println(render.Summary(view.Summary))
	return nil
}

type LogCmd struct {
	Date string `arg:"" optional:"" help:"Day to list (YYYY-MM-DD). Defaults to today."`
	JSON bool   `help:"Print JSON instead of a table."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	view := ctx.Service().Submissions(context.Background(), day)
	if c.JSON {
		return cli.PrintJSON(view)
	}

	if view.Degraded {
		fmt.Println(render.Degraded())
	}
	if len(view.Submissions) == 0 {
		fmt.Printf("No submissions for %s.\n", day)
		return nil
	}
	fmt.Println(render.Table(render.LogGrid(ctx.Catalog, view.Submissions)))
	return nil
}
