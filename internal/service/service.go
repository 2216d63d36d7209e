// Package service is the application core behind the CLI and dashboard. It
// owns the submission store, the evidence store and the catalogs, and turns
// requests into validated submissions, reports and audit adjustments.
package service

import (
	"time"

	"github.com/julianstephens/storeduty/internal/catalog"
	"github.com/julianstephens/storeduty/internal/evidence"
	"github.com/julianstephens/storeduty/internal/logger"
	"github.com/julianstephens/storeduty/internal/models"
	"github.com/julianstephens/storeduty/internal/reconcile"
	"github.com/julianstephens/storeduty/internal/storage"
	"github.com/julianstephens/storeduty/internal/utils"
)

type Service struct {
	store    storage.Provider
	evidence evidence.Store
	catalog  catalog.Catalog
	excluded []string
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithExclusions replaces the tasks left out of missing-task penalties.
func WithExclusions(taskIDs []string) Option {
	return func(s *Service) { s.excluded = append([]string(nil), taskIDs...) }
}

// New builds a Service over a loaded store. ev may be nil when no photo task
// is ever submitted.
func New(store storage.Provider, ev evidence.Store, cat catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		store:    store,
		evidence: ev,
		catalog:  cat,
		excluded: reconcile.DefaultExclusions(cat.Tasks),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalogs the service validates against.
func (s *Service) Catalog() catalog.Catalog {
	return s.catalog
}

// Excluded returns the task ids left out of missing-task penalties.
func (s *Service) Excluded() []string {
	return append([]string(nil), s.excluded...)
}

// Settings returns the stored settings with defaults filled in. A store
// failure yields the defaults.
func (s *Service) Settings() models.Settings {
	settings, err := s.store.GetSettings()
	if err != nil {
		logger.Warn("Failed to read settings, using defaults", "error", err)
		settings = models.DefaultSettings()
	}
	models.ApplyDefaultSettings(&settings)
	return settings
}

// Location is the stores' timezone.
func (s *Service) Location() *time.Location {
	return utils.LocationFromSettings(s.Settings())
}

// Today is the current calendar day in the stores' timezone.
func (s *Service) Today() string {
	return utils.DayOf(s.now(), s.Location())
}
