package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/julianstephens/storeduty/internal/storage/jsonfile"
	"github.com/julianstephens/storeduty/internal/storage/memory"
	"github.com/julianstephens/storeduty/internal/storage/postgres"
	"github.com/julianstephens/storeduty/internal/storage/spreadsheet"
	"github.com/julianstephens/storeduty/internal/storage/sqlite"
	"github.com/julianstephens/storeduty/internal/utils"
)

// Backend names a storage implementation.
type Backend string

const (
	BackendSQLite      Backend = "sqlite"
	BackendPostgres    Backend = "postgres"
	BackendJSON        Backend = "json"
	BackendSpreadsheet Backend = "spreadsheet"
	BackendMemory      Backend = "memory"
)

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
	_ Provider = (*jsonfile.Store)(nil)
	_ Provider = (*spreadsheet.Store)(nil)
	_ Provider = (*memory.Store)(nil)

	_ SchemaVersioner = (*sqlite.Store)(nil)
	_ SchemaVersioner = (*postgres.Store)(nil)
)

// DetectBackend picks the backend for a config value: a PostgreSQL
// connection string, a .json or .xlsx path, "memory", or a SQLite path.
func DetectBackend(config string) Backend {
	switch {
	case postgres.IsConnString(config):
		return BackendPostgres
	case config == string(BackendMemory):
		return BackendMemory
	}
	switch strings.ToLower(filepath.Ext(config)) {
	case ".json":
		return BackendJSON
	case ".xlsx":
		return BackendSpreadsheet
	}
	return BackendSQLite
}

// New returns an unloaded Provider for config. PostgreSQL connection strings
// carrying a password are refused.
func New(config string) (Provider, error) {
	switch DetectBackend(config) {
	case BackendPostgres:
		if _, err := postgres.ValidateConnString(config); err != nil {
			return nil, err
		}
		return postgres.New(config), nil
	case BackendMemory:
		return memory.NewStore(), nil
	case BackendJSON:
		return jsonfile.NewStore(utils.ExpandPath(config)), nil
	case BackendSpreadsheet:
		return spreadsheet.NewStore(utils.ExpandPath(config)), nil
	case BackendSQLite:
		return sqlite.NewStore(utils.ExpandPath(config)), nil
	}
	return nil, fmt.Errorf("unsupported storage config %q", config)
}

// NewPostgres returns a PostgreSQL Provider without the embedded-credential
// check. It is meant for connection strings read from the OS keyring or the
// environment, which are not visible in shell history.
func NewPostgres(connStr string) Provider {
	return postgres.New(connStr)
}
