package audits

import (
	"context"
	"fmt"

	"github.com/julianstephens/storeduty/internal/cli"
	"github.com/julianstephens/storeduty/internal/models"
)

type AuditCmd struct {
	ID     string `arg:"" help:"Submission id."`
	Action string `arg:"" help:"approve, minor-fault, major-fault or revoke-to-zero."`
	Actor  string `help:"Manager recorded on the adjustment." default:"manager" env:"STOREDUTY_ACTOR"`
	Note   string `help:"Free-text note kept in the audit trail."`
}

func (c *AuditCmd) Run(ctx *cli.Context) error {
	action, err := models.ParseAction(c.Action)
	if err != nil {
		return err
	}

	sub, adj, err := ctx.Service().Audit(context.Background(), c.ID, action, c.Actor, c.Note)
	if err != nil {
		return err
	}

	rule, _ := action.Rule()
	fmt.Printf("✓ %s recorded on %s (adjustment %s)\n", rule.Label, sub.ID, adj.ID)
	fmt.Printf("  status %s, points %d\n", sub.Status, sub.Points)
	return nil
}
