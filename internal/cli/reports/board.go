package reports

import (
	"context"
	"fmt"

	"github.com/julianstephens/storeduty/internal/cli"
	"github.com/julianstephens/storeduty/internal/render"
)

type BoardCmd struct {
	Date string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD). Defaults to today."`
	JSON bool   `help:"Print JSON instead of tables."`
}

func (c *BoardCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	view := ctx.Service().Board(context.Background(), day)
	if c.JSON {
		return cli.PrintJSON(view)
	}

	if view.Degraded {
		fmt.Println(render.Degraded())
	}
	fmt.Println(render.Title("Completion " + day))
	fmt.Println(render.Table(render.CompletionGrid(ctx.Catalog, view.Completion)))
	fmt.Println(render.Title("Missing-task penalties"))
	fmt.Println(render.Table(render.PenaltyGrid(ctx.Catalog, view.Penalties)))
	return nil
}

type PenaltiesCmd struct {
	Date string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD). Defaults to today."`
	JSON bool   `help:"Print JSON instead of a table."`
}

func (c *PenaltiesCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	view := ctx.Service().Board(context.Background(), day)
	if c.JSON {
		return cli.PrintJSON(view.Penalties)
	}

	if view.Degraded {
		fmt.Println(render.Degraded())
	}
	fmt.Println(render.Table(render.PenaltyGrid(ctx.Catalog, view.Penalties)))
	return nil
}
