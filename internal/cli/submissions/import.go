package submissions

import (
	"context"
	"fmt"

	"github.com/julianstephens/storeduty/internal/cli"
)

// ImportCmd loads a legacy .xlsx/.xls submission log.
type ImportCmd struct {
	File string `arg:"" help:"Spreadsheet to import." type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	res, err := ctx.Service().ImportFile(context.Background(), c.File)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Imported %d submissions (%d already present)\n", res.Added, res.Skipped)
	return nil
}
