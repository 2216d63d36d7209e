package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/storeduty/internal/backup"
	"github.com/julianstephens/storeduty/internal/catalog"
	"github.com/julianstephens/storeduty/internal/constants"
	"github.com/julianstephens/storeduty/internal/evidence"
	"github.com/julianstephens/storeduty/internal/logger"
	"github.com/julianstephens/storeduty/internal/models"
	"github.com/julianstephens/storeduty/internal/service"
	"github.com/julianstephens/storeduty/internal/storage"
)

type Context struct {
	Store    storage.Provider
	Config   string
	Catalog  catalog.Catalog
	Evidence evidence.Store

	svc *service.Service
}

// Service returns the application service over the loaded store.
func (c *Context) Service() *service.Service {
	if c.svc == nil {
		c.svc = service.New(c.Store, c.Evidence, c.Catalog)
	}
	return c.svc
}

// IsSQLite reports whether the store is a local SQLite file, the only backend
// with file backups.
func (c *Context) IsSQLite() bool {
	return storage.DetectBackend(c.Config) == storage.BackendSQLite
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveDay returns day, or today in the stores' timezone when day is empty.
func (c *Context) ResolveDay(day string) (string, error) {
	if day == "" {
		return c.Service().Today(), nil
	}
	if !models.IsValidDay(day) {
		return "", fmt.Errorf("invalid date %q, expected %s", day, constants.DateFormat)
	}
	return day, nil
}

// PrintJSON writes v to stdout as indented JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatTimestamp formats t in the stores' timezone.
func (c *Context) FormatTimestamp(t time.Time) string {
	return t.In(c.Service().Location()).Format(constants.TimestampFormat)
}
