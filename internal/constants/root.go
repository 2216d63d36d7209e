package constants

import "time"

const (
	AppName            = "storeduty"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/storeduty/storeduty.db"
	DefaultEvidenceDir = "~/.config/storeduty/evidence"
	Version            = "v0.3.0"

	// DateFormat is the calendar-day format used for grouping (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is the store-local submission timestamp format
	TimestampFormat = "2006-01-02 15:04:05"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "storeduty-"
	BackupFileSuffix = ".db.xz"

	// Spreadsheet store constants
	SubmissionSheet      = "submissions"
	AdjustmentSheet      = "adjustments"
	SettingsSheet        = "settings"
	SpreadsheetLockName  = ".storeduty.lock"
	SpreadsheetLockRetry = 50 * time.Millisecond
	SpreadsheetLockWait  = 2 * time.Second
)
