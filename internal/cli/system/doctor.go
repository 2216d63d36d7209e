package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/storeduty/internal/backup"
	"github.com/julianstephens/storeduty/internal/cli"
	"github.com/julianstephens/storeduty/internal/evidence"
	"github.com/julianstephens/storeduty/internal/storage"
	"github.com/julianstephens/storeduty/internal/utils"
)

type DoctorCmd struct {
	Evidence string `help:"Also check that this evidence store can be opened." placeholder:"URI"`
}

type check struct {
	name    string
	run     func() error
	warning bool
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	checks := []check{
		{name: "Store reachable", run: func() error { return checkStoreReachable(ctx) }},
		{name: "Schema version", run: func() error { return checkSchemaVersion(ctx) }},
		{name: "Catalog", run: func() error { return checkCatalog(ctx) }},
		{name: "Timezone", run: func() error { return checkTimezone(ctx) }},
		{name: "Clock", run: checkClock},
		{name: "Backups present", run: func() error { return checkBackupsPresent(ctx) }, warning: true},
	}
	if cmd.Evidence != "" {
		checks = append(checks, check{name: "Evidence store", run: func() error { return checkEvidence(cmd.Evidence) }})
	}

	hasError := false
	for _, c := range checks {
		err := c.run()
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warning:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if _, err := ctx.Store.GetSettings(); err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if _, err := ctx.Store.GetAllSubmissions(); err != nil {
		return fmt.Errorf("failed to read submissions: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	sv, ok := ctx.Store.(storage.SchemaVersioner)
	if !ok {
		return nil
	}
	current, latest, err := sv.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkCatalog(ctx *cli.Context) error {
	if len(ctx.Catalog.Stores.Real()) == 0 {
		return fmt.Errorf("catalog has no stores")
	}
	if ctx.Catalog.Tasks.Len() == 0 {
		return fmt.Errorf("catalog has no tasks")
	}
	return nil
}

func checkTimezone(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("unknown timezone %q, falling back to UTC", settings.Timezone)
	}
	return nil
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'storeduty backup create'")
	}
	return nil
}

func checkEvidence(uri string) error {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := evidence.Open(c, uri)
	return err
}
