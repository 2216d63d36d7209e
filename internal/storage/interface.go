package storage

import "github.com/julianstephens/storeduty/internal/models"

// Provider persists submissions, the adjustment trail and settings.
// Every backend decodes submissions through models.DecodeSubmission so rows
// with missing or extra columns still load.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Submissions
	AppendSubmission(models.Submission) error
	GetSubmission(id string) (models.Submission, error)
	GetAllSubmissions() ([]models.Submission, error)
	// UpdateSubmission persists Status and Points only; every other field is
	// immutable once appended.
	UpdateSubmission(models.Submission) error

	// Adjustments form an append-only trail.
	AppendAdjustment(models.Adjustment) error
	GetAdjustments(submissionID string) ([]models.Adjustment, error)
	GetAllAdjustments() ([]models.Adjustment, error)
	HasAdjustment(id string) (bool, error)

	// Utils
	GetConfigPath() string
}

// SchemaVersioner is implemented by the SQL backends.
type SchemaVersioner interface {
	SchemaVersion() (current, latest int, err error)
}
