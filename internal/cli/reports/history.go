package reports

import (
	"context"
	"fmt"

	"github.com/julianstephens/storeduty/internal/cli"
	"github.com/julianstephens/storeduty/internal/render"
)

type HistoryCmd struct {
	JSON bool `help:"Print JSON instead of a table."`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	view := ctx.Service().History(context.Background())
	if c.JSON {
		return cli.PrintJSON(view.Days)
	}

	if view.Degraded {
		fmt.Println(render.Degraded())
	}
	if len(view.Days) == 0 {
		fmt.Println("No submissions recorded yet.")
		return nil
	}
	fmt.Println(render.Table(render.HistoryGrid(ctx.Catalog, view.Days)))
	return nil
}

type RankingCmd struct {
	JSON bool `help:"Print JSON instead of a table."`
}

func (c *RankingCmd) Run(ctx *cli.Context) error {
	view := ctx.Service().History(context.Background())
	if c.JSON {
		return cli.PrintJSON(view.Ranking)
	}

	if view.Degraded {
		fmt.Println(render.Degraded())
	}
	if len(view.Ranking) == 0 {
		fmt.Println("No submissions recorded yet.")
		return nil
	}
	fmt.Println(render.Table(render.RankingGrid(ctx.Catalog, view.Ranking)))
	return nil
}
