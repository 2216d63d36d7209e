// Package jsonfile keeps the whole submission log in a single JSON document.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "github.com/julianstephens/storeduty/internal/errors"
	"github.com/julianstephens/storeduty/internal/models"
	"github.com/julianstephens/storeduty/internal/utils"
)

// Document is the on-disk layout. Submissions are kept as flat records so
// files written by older versions still load.
type Document struct {
	Version     int                 `json:"version"`
	Settings    map[string]string   `json:"settings"`
	Submissions []models.Record     `json:"submissions"`
	Adjustments []models.Adjustment `json:"adjustments"`
}

type Store struct {
	mu   sync.Mutex
	path string
	doc  *Document
	loc  *time.Location
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		loc:  time.Local,
	}
}

func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.doc = &Document{
		Version:  1,
		Settings: models.SettingsToMap(models.DefaultSettings()),
	}
	s.refreshLocation()

	return s.save()
}

func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'storeduty init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Settings == nil {
		doc.Settings = models.SettingsToMap(models.DefaultSettings())
	}
	s.doc = doc
	s.refreshLocation()

	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) refreshLocation() {
	settings, err := models.MapToSettings(s.doc.Settings)
	if err != nil {
		return
	}
	s.loc = utils.LocationFromSettings(settings)
}

// save writes the document to a temp file and renames it over the original.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *Store) ready() error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *Store) GetSettings() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return models.Settings{}, err
	}
	return models.MapToSettings(s.doc.Settings)
}

func (s *Store) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	s.doc.Settings = models.SettingsToMap(settings)
	s.refreshLocation()
	return s.save()
}

func (s *Store) find(id string) int {
	for i, rec := range s.doc.Submissions {
		if rec.Get(models.FieldID) == id {
			return i
		}
	}
	return -1
}

func (s *Store) AppendSubmission(sub models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if s.find(sub.ID) >= 0 {
		return fmt.Errorf("submission %s already exists", sub.ID)
	}
	s.doc.Submissions = append(s.doc.Submissions, models.EncodeSubmission(sub, s.loc))
	return s.save()
}

func (s *Store) GetSubmission(id string) (models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return models.Submission{}, err
	}
	i := s.find(id)
	if i < 0 {
		return models.Submission{}, apperrors.NotFound("submission", id)
	}
	return models.DecodeSubmission(s.doc.Submissions[i], s.loc, utils.DayOf(time.Now(), s.loc)), nil
}

func (s *Store) GetAllSubmissions() ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	day := utils.DayOf(time.Now(), s.loc)
	subs := make([]models.Submission, 0, len(s.doc.Submissions))
	for _, rec := range s.doc.Submissions {
		subs = append(subs, models.DecodeSubmission(rec, s.loc, day))
	}
	return subs, nil
}

func (s *Store) UpdateSubmission(sub models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	i := s.find(sub.ID)
	if i < 0 {
		return apperrors.NotFound("submission", sub.ID)
	}
	updated := models.EncodeSubmission(sub, s.loc)
	s.doc.Submissions[i][models.FieldStatus] = updated[models.FieldStatus]
	s.doc.Submissions[i][models.FieldPoints] = updated[models.FieldPoints]
	return s.save()
}

func (s *Store) AppendAdjustment(adj models.Adjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if adj.ID == "" {
		return fmt.Errorf("adjustment id is required")
	}
	for _, existing := range s.doc.Adjustments {
		if existing.ID == adj.ID {
			return fmt.Errorf("adjustment %s already exists", adj.ID)
		}
	}
	s.doc.Adjustments = append(s.doc.Adjustments, adj)
	return s.save()
}

func (s *Store) GetAdjustments(submissionID string) ([]models.Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	var trail []models.Adjustment
	for _, adj := range s.doc.Adjustments {
		if adj.SubmissionID == submissionID {
			trail = append(trail, adj)
		}
	}
	return trail, nil
}

func (s *Store) GetAllAdjustments() ([]models.Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return append([]models.Adjustment(nil), s.doc.Adjustments...), nil
}

func (s *Store) HasAdjustment(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return false, err
	}
	for _, adj := range s.doc.Adjustments {
		if adj.ID == id {
			return true, nil
		}
	}
	return false, nil
}
