package reports

import (
	"context"
	"fmt"

	"github.com/julianstephens/storeduty/internal/cli"
	"github.com/julianstephens/storeduty/internal/export"
)

type ExportCmd struct {
	Output string `arg:"" help:"Path of the .xlsx workbook to write." type:"path"`
	Date   string `help:"Day for the completion, penalty and log sheets. Defaults to today."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	bg := context.Background()
	svc := ctx.Service()

	board := svc.Board(bg, day)
	history := svc.History(bg)
	log := svc.Submissions(bg, day)
	if board.Degraded || history.Degraded || log.Degraded {
		return fmt.Errorf("submission store unavailable, refusing to export an empty report")
	}

	err = export.WriteWorkbook(c.Output, ctx.Catalog, export.Report{
		Completion:  board.Completion,
		Penalties:   board.Penalties,
		History:     history.Days,
		Ranking:     history.Ranking,
		Submissions: log.Submissions,
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ Report for %s written to %s\n", day, c.Output)
	return nil
}
