package settings

import (
	"fmt"

	"github.com/julianstephens/storeduty/internal/cli"
	"github.com/julianstephens/storeduty/internal/models"
	"github.com/julianstephens/storeduty/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone       *string `help:"IANA timezone of the stores, e.g. Asia/Taipei."`
	PhotoMaxEdge   *int    `help:"Longest photo edge in pixels after compression (0 keeps size)."`
	PhotoQuality   *int    `help:"JPEG quality for stored photos (1-100)."`
	StrictEvidence *bool   `help:"Reject photos without capture-time metadata."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated, err := c.apply(&settings)
	if err != nil {
		return err
	}

	if c.List || !updated {
		fmt.Println("Current Settings:")
		fmt.Printf("  Timezone:        %s\n", settings.Timezone)
		fmt.Printf("  Photo Max Edge:  %d px\n", settings.PhotoMaxEdge)
		fmt.Printf("  Photo Quality:   %d\n", settings.PhotoQuality)
		fmt.Printf("  Strict Evidence: %v\n", settings.StrictEvidence)
		if !updated {
			return nil
		}
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}

func (c *SettingsCmd) apply(settings *models.Settings) (bool, error) {
	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return false, fmt.Errorf("unknown timezone %q", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.PhotoMaxEdge != nil {
		if *c.PhotoMaxEdge < 0 {
			return false, fmt.Errorf("photo max edge must not be negative")
		}
		settings.PhotoMaxEdge = *c.PhotoMaxEdge
		updated = true
	}
	if c.PhotoQuality != nil {
		if *c.PhotoQuality < 1 || *c.PhotoQuality > 100 {
			return false, fmt.Errorf("photo quality must be between 1 and 100")
		}
		settings.PhotoQuality = *c.PhotoQuality
		updated = true
	}
	if c.StrictEvidence != nil {
		settings.StrictEvidence = *c.StrictEvidence
		updated = true
	}
	return updated, nil
}
