// Package memory is an in-process Provider used for demos and tests. Nothing
// survives Close.
package memory

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/julianstephens/storeduty/internal/errors"
	"github.com/julianstephens/storeduty/internal/models"
	"github.com/julianstephens/storeduty/internal/utils"
)

type Store struct {
	mu          sync.Mutex
	loaded      bool
	settings    models.Settings
	loc         *time.Location
	records     []models.Record
	index       map[string]int
	adjustments []models.Adjustment
}

func NewStore() *Store {
	return &Store{loc: time.Local}
}

func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = models.DefaultSettings()
	s.loc = utils.LocationFromSettings(s.settings)
	s.records = nil
	s.index = make(map[string]int)
	s.adjustments = nil
	s.loaded = true
	return nil
}

// Load on an empty memory store behaves like Init.
func (s *Store) Load() error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	return s.Init()
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConfigPath() string {
	return "memory"
}

func (s *Store) ready() error {
	if !s.loaded {
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
	return s.settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	s.settings = settings
	s.loc = utils.LocationFromSettings(settings)
	return nil
}

func (s *Store) AppendSubmission(sub models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if _, ok := s.index[sub.ID]; ok {
		return fmt.Errorf("submission %s already exists", sub.ID)
	}
	s.index[sub.ID] = len(s.records)
	s.records = append(s.records, models.EncodeSubmission(sub, s.loc))
	return nil
}

// AppendRecord stores a raw record as-is, including legacy rows with missing
// columns.
func (s *Store) AppendRecord(rec models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if id := rec.Get(models.FieldID); id != "" {
		s.index[id] = len(s.records)
	}
	s.records = append(s.records, rec)
}

func (s *Store) GetSubmission(id string) (models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return models.Submission{}, err
	}
	i, ok := s.index[id]
	if !ok {
		return models.Submission{}, apperrors.NotFound("submission", id)
	}
	return models.DecodeSubmission(s.records[i], s.loc, utils.DayOf(time.Now(), s.loc)), nil
}

func (s *Store) GetAllSubmissions() ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	day := utils.DayOf(time.Now(), s.loc)
	subs := make([]models.Submission, 0, len(s.records))
	for _, rec := range s.records {
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
	i, ok := s.index[sub.ID]
	if !ok {
		return apperrors.NotFound("submission", sub.ID)
	}
	rec := make(models.Record, len(s.records[i]))
	for k, v := range s.records[i] {
		rec[k] = v
	}
	updated := models.EncodeSubmission(sub, s.loc)
	rec[models.FieldStatus] = updated[models.FieldStatus]
	rec[models.FieldPoints] = updated[models.FieldPoints]
	s.records[i] = rec
	return nil
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
	for _, existing := range s.adjustments {
		if existing.ID == adj.ID {
			return fmt.Errorf("adjustment %s already exists", adj.ID)
		}
	}
	s.adjustments = append(s.adjustments, adj)
	return nil
}

func (s *Store) GetAdjustments(submissionID string) ([]models.Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	var trail []models.Adjustment
	for _, adj := range s.adjustments {
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
	return append([]models.Adjustment(nil), s.adjustments...), nil
}

func (s *Store) HasAdjustment(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return false, err
	}
	for _, adj := range s.adjustments {
		if adj.ID == id {
			return true, nil
		}
	}
	return false, nil
}
