// Package spreadsheet stores the submission log in an .xlsx workbook, one
// sheet per table with a header row. Columns are matched by header name so
// hand-edited workbooks with reordered, missing or extra columns still load.
package spreadsheet

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/storeduty/internal/constants"
	apperrors "github.com/julianstephens/storeduty/internal/errors"
	"github.com/julianstephens/storeduty/internal/models"
	"github.com/julianstephens/storeduty/internal/utils"
)

var adjustmentFields = []string{
	"id", "submission_id", "action", "delta_points", "new_status", "actor", "note", "created_at",
}

var settingsFields = []string{"key", "value"}

type Store struct {
	mu   sync.Mutex
	path string
	lock fileLock
	loc  *time.Location
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: fileLock{path: filepath.Join(filepath.Dir(path), constants.SpreadsheetLockName)},
		loc:  time.Local,
	}
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	if err := s.lock.acquire(); err != nil {
		return err
	}
	defer s.lock.release()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", constants.SubmissionSheet); err != nil {
		return err
	}
	for _, name := range []string{constants.AdjustmentSheet, constants.SettingsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	headers := map[string][]string{
		constants.SubmissionSheet: models.RecordFields,
		constants.AdjustmentSheet: adjustmentFields,
		constants.SettingsSheet:   settingsFields,
	}
	for sheet, fields := range headers {
		if err := writeRow(f, sheet, 1, toCells(fields)); err != nil {
			return err
		}
	}

	settings := models.DefaultSettings()
	if err := writeSettings(f, settings); err != nil {
		return err
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	s.loc = utils.LocationFromSettings(settings)
	return nil
}

func (s *Store) Load() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'storeduty init' first")
	}

	settings, err := s.GetSettings()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.loc = utils.LocationFromSettings(settings)
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	return nil
}

// read opens the workbook for a read-only operation.
func (s *Store) read(fn func(f *excelize.File) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return fn(f)
}

// write runs fn under the process mutex and the lockfile, then saves.
func (s *Store) write(fn func(f *excelize.File) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.acquire(); err != nil {
		return err
	}
	defer s.lock.release()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// table is a sheet read into header-keyed rows.
type table struct {
	header map[string]int
	rows   [][]string
}

func readTable(f *excelize.File, sheet string) (table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return table{}, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	t := table{header: make(map[string]int)}
	if len(rows) == 0 {
		return t, nil
	}
	for i, name := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, dup := t.header[key]; !dup {
			t.header[key] = i
		}
	}
	t.rows = rows[1:]
	return t, nil
}

// record maps row i to a field/value record. Row numbers in the sheet are i+2.
func (t table) record(i int) models.Record {
	rec := make(models.Record, len(t.header))
	row := t.rows[i]
	for key, col := range t.header {
		if col < len(row) {
			rec[key] = row[col]
		}
	}
	return rec
}

func (t table) find(key, value string) int {
	for i := range t.rows {
		if t.record(i).Get(key) == value {
			return i
		}
	}
	return -1
}

// ensureColumns appends header cells for any of fields the sheet lacks.
func ensureColumns(f *excelize.File, sheet string, t *table, fields []string) error {
	next := 0
	for _, col := range t.header {
		if col+1 > next {
			next = col + 1
		}
	}
	for _, field := range fields {
		if _, ok := t.header[field]; ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(next+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, field); err != nil {
			return err
		}
		t.header[field] = next
		next++
	}
	return nil
}

func appendRecord(f *excelize.File, sheet string, fields []string, values map[string]interface{}) error {
	t, err := readTable(f, sheet)
	if err != nil {
		return err
	}
	if err := ensureColumns(f, sheet, &t, fields); err != nil {
		return err
	}
	rowNum := len(t.rows) + 2
	for key, value := range values {
		col, ok := t.header[key]
		if !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func writeSettings(f *excelize.File, settings models.Settings) error {
	t, err := readTable(f, constants.SettingsSheet)
	if err != nil {
		return err
	}
	if err := ensureColumns(f, constants.SettingsSheet, &t, settingsFields); err != nil {
		return err
	}

	data := models.SettingsToMap(settings)
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	appended := 0
	for _, k := range keys {
		rowNum := len(t.rows) + 2 + appended
		if i := t.find("key", k); i >= 0 {
			rowNum = i + 2
		} else {
			appended++
		}
		keyCell, _ := excelize.CoordinatesToCellName(t.header["key"]+1, rowNum)
		valueCell, _ := excelize.CoordinatesToCellName(t.header["value"]+1, rowNum)
		if err := f.SetCellValue(constants.SettingsSheet, keyCell, k); err != nil {
			return err
		}
		if err := f.SetCellValue(constants.SettingsSheet, valueCell, data[k]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetSettings() (models.Settings, error) {
	var settings models.Settings
	err := s.read(func(f *excelize.File) error {
		t, err := readTable(f, constants.SettingsSheet)
		if err != nil {
			return err
		}
		data := make(map[string]string)
		for i := range t.rows {
			rec := t.record(i)
			if key := rec.Get("key"); key != "" {
				data[key] = rec.Get("value")
			}
		}
		if len(data) == 0 {
			return fmt.Errorf("settings not found")
		}
		settings, err = models.MapToSettings(data)
		return err
	})
	return settings, err
}

func (s *Store) SaveSettings(settings models.Settings) error {
	if err := s.write(func(f *excelize.File) error {
		return writeSettings(f, settings)
	}); err != nil {
		return err
	}
	s.mu.Lock()
	s.loc = utils.LocationFromSettings(settings)
	s.mu.Unlock()
	return nil
}

func (s *Store) AppendSubmission(sub models.Submission) error {
	return s.write(func(f *excelize.File) error {
		t, err := readTable(f, constants.SubmissionSheet)
		if err != nil {
			return err
		}
		if t.find(models.FieldID, sub.ID) >= 0 {
			return fmt.Errorf("submission %s already exists", sub.ID)
		}

		rec := models.EncodeSubmission(sub, s.loc)
		values := make(map[string]interface{}, len(rec))
		for k, v := range rec {
			values[k] = v
		}
		values[models.FieldPoints] = sub.Points
		return appendRecord(f, constants.SubmissionSheet, models.RecordFields, values)
	})
}

func (s *Store) GetSubmission(id string) (models.Submission, error) {
	var sub models.Submission
	err := s.read(func(f *excelize.File) error {
		t, err := readTable(f, constants.SubmissionSheet)
		if err != nil {
			return err
		}
		i := t.find(models.FieldID, id)
		if i < 0 {
			return apperrors.NotFound("submission", id)
		}
		sub = models.DecodeSubmission(t.record(i), s.loc, utils.DayOf(time.Now(), s.loc))
		return nil
	})
	return sub, err
}

func (s *Store) GetAllSubmissions() ([]models.Submission, error) {
	var subs []models.Submission
	err := s.read(func(f *excelize.File) error {
		t, err := readTable(f, constants.SubmissionSheet)
		if err != nil {
			return err
		}
		day := utils.DayOf(time.Now(), s.loc)
		for i := range t.rows {
			rec := t.record(i)
			if isBlank(rec) {
				continue
			}
			subs = append(subs, models.DecodeSubmission(rec, s.loc, day))
		}
		return nil
	})
	return subs, err
}

func isBlank(rec models.Record) bool {
	for k := range rec {
		if rec.Get(k) != "" {
			return false
		}
	}
	return true
}

func (s *Store) UpdateSubmission(sub models.Submission) error {
	return s.write(func(f *excelize.File) error {
		t, err := readTable(f, constants.SubmissionSheet)
		if err != nil {
			return err
		}
		i := t.find(models.FieldID, sub.ID)
		if i < 0 {
			return apperrors.NotFound("submission", sub.ID)
		}
		if err := ensureColumns(f, constants.SubmissionSheet, &t, []string{models.FieldStatus, models.FieldPoints}); err != nil {
			return err
		}
		statusCell, _ := excelize.CoordinatesToCellName(t.header[models.FieldStatus]+1, i+2)
		pointsCell, _ := excelize.CoordinatesToCellName(t.header[models.FieldPoints]+1, i+2)
		if err := f.SetCellValue(constants.SubmissionSheet, statusCell, sub.Status); err != nil {
			return err
		}
		return f.SetCellValue(constants.SubmissionSheet, pointsCell, sub.Points)
	})
}

func (s *Store) AppendAdjustment(adj models.Adjustment) error {
	if adj.ID == "" {
		return fmt.Errorf("adjustment id is required")
	}
	return s.write(func(f *excelize.File) error {
		t, err := readTable(f, constants.AdjustmentSheet)
		if err != nil {
			return err
		}
		if t.find("id", adj.ID) >= 0 {
			return fmt.Errorf("adjustment %s already exists", adj.ID)
		}
		return appendRecord(f, constants.AdjustmentSheet, adjustmentFields, map[string]interface{}{
			"id":            adj.ID,
			"submission_id": adj.SubmissionID,
			"action":        string(adj.Action),
			"delta_points":  adj.DeltaPoints,
			"new_status":    adj.NewStatus,
			"actor":         adj.Actor,
			"note":          adj.Note,
			"created_at":    adj.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	})
}

func decodeAdjustment(rec models.Record) models.Adjustment {
	adj := models.Adjustment{
		ID:           rec.Get("id"),
		SubmissionID: rec.Get("submission_id"),
		Action:       models.Action(rec.Get("action")),
		NewStatus:    rec.Get("new_status"),
		Actor:        rec.Get("actor"),
		Note:         rec.Get("note"),
	}
	if d, err := strconv.Atoi(rec.Get("delta_points")); err == nil {
		adj.DeltaPoints = d
	}
	if t, err := time.Parse(time.RFC3339Nano, rec.Get("created_at")); err == nil {
		adj.CreatedAt = t
	}
	return adj
}

func (s *Store) readAdjustments(keep func(models.Adjustment) bool) ([]models.Adjustment, error) {
	var trail []models.Adjustment
	err := s.read(func(f *excelize.File) error {
		t, err := readTable(f, constants.AdjustmentSheet)
		if err != nil {
			return err
		}
		for i := range t.rows {
			adj := decodeAdjustment(t.record(i))
			if adj.ID != "" && keep(adj) {
				trail = append(trail, adj)
			}
		}
		return nil
	})
	return trail, err
}

func (s *Store) GetAdjustments(submissionID string) ([]models.Adjustment, error) {
	return s.readAdjustments(func(adj models.Adjustment) bool {
		return adj.SubmissionID == submissionID
	})
}

func (s *Store) GetAllAdjustments() ([]models.Adjustment, error) {
	return s.readAdjustments(func(models.Adjustment) bool { return true })
}

func (s *Store) HasAdjustment(id string) (bool, error) {
	trail, err := s.readAdjustments(func(adj models.Adjustment) bool {
		return adj.ID == id
	})
	return len(trail) > 0, err
}
