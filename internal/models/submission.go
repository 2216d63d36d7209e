package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/storeduty/internal/constants"
)

// EvidenceCheck is the outcome of comparing a photo's embedded capture time
// against the submission day.
type EvidenceCheck string

const (
	EvidenceNotRequired      EvidenceCheck = ""
	EvidenceVerifiedToday    EvidenceCheck = "verified_today"
	EvidenceUnverifiable     EvidenceCheck = "unverifiable"
	EvidenceVerifiedMismatch EvidenceCheck = "verified_mismatch"
)

// Submission is one staff report of one task at one store.
type Submission struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Date          string        `json:"date"` // YYYY-MM-DD, store-local
	StoreID       string        `json:"store_id"`
	EmployeeName  string        `json:"employee_name"`
	TaskID        string        `json:"task_id"`
	Evidence      string        `json:"evidence,omitempty"`
	EvidenceCheck EvidenceCheck `json:"evidence_check,omitempty"`
	Status        string        `json:"status"`
	Points        int           `json:"points"`
}

// Record is the flat field/value shape every submission store persists.
// Readers must tolerate missing and unknown keys.
type Record map[string]string

// Record field names.
const (
	FieldID            = "id"
	FieldTimestamp     = "timestamp"
	FieldDate          = "date"
	FieldStoreID       = "store_id"
	FieldEmployeeName  = "employee_name"
	FieldTaskID        = "task_id"
	FieldEvidence      = "evidence"
	FieldEvidenceCheck = "evidence_check"
	FieldStatus        = "status"
	FieldPoints        = "points"
)

// RecordFields lists the record columns in their canonical order.
var RecordFields = []string{
	FieldID,
	FieldTimestamp,
	FieldDate,
	FieldStoreID,
	FieldEmployeeName,
	FieldTaskID,
	FieldEvidence,
	FieldEvidenceCheck,
	FieldStatus,
	FieldPoints,
}

// Get returns the trimmed value for key, or "" when absent.
func (r Record) Get(key string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r[key])
}

// RecordFromValues builds a Record from values listed in RecordFields order.
// Short rows leave the trailing fields empty.
func RecordFromValues(values []string) Record {
	rec := make(Record, len(RecordFields))
	for i, field := range RecordFields {
		if i < len(values) {
			rec[field] = values[i]
		}
	}
	return rec
}

// Values returns the record's values in RecordFields order.
func (r Record) Values() []string {
	values := make([]string, len(RecordFields))
	for i, field := range RecordFields {
		values[i] = r[field]
	}
	return values
}

// EncodeSubmission flattens s into a Record. The timestamp is written in loc
// using constants.TimestampFormat.
func EncodeSubmission(s Submission, loc *time.Location) Record {
	if loc == nil {
		loc = time.Local
	}
	ts := ""
	if !s.Timestamp.IsZero() {
		ts = s.Timestamp.In(loc).Format(constants.TimestampFormat)
	}
	return Record{
		FieldID:            s.ID,
		FieldTimestamp:     ts,
		FieldDate:          s.Date,
		FieldStoreID:       s.StoreID,
		FieldEmployeeName:  s.EmployeeName,
		FieldTaskID:        s.TaskID,
		FieldEvidence:      s.Evidence,
		FieldEvidenceCheck: string(s.EvidenceCheck),
		FieldStatus:        s.Status,
		FieldPoints:        strconv.Itoa(s.Points),
	}
}

// DecodeSubmission rebuilds a Submission from a stored record. It never
// fails: a malformed timestamp leaves Timestamp zero, and Date then falls back
// to the stored date column and finally to ingestDay.
func DecodeSubmission(rec Record, loc *time.Location, ingestDay string) Submission {
	if loc == nil {
		loc = time.Local
	}
	s := Submission{
		ID:            rec.Get(FieldID),
		StoreID:       rec.Get(FieldStoreID),
		EmployeeName:  rec.Get(FieldEmployeeName),
		TaskID:        rec.Get(FieldTaskID),
		Evidence:      rec.Get(FieldEvidence),
		EvidenceCheck: EvidenceCheck(rec.Get(FieldEvidenceCheck)),
		Status:        rec.Get(FieldStatus),
	}

	if ts, ok := ParseTimestamp(rec.Get(FieldTimestamp), loc); ok {
		s.Timestamp = ts
		s.Date = ts.In(loc).Format(constants.DateFormat)
	} else if day := rec.Get(FieldDate); IsValidDay(day) {
		s.Date = day
	} else {
		s.Date = ingestDay
	}

	if s.Status == "" {
		s.Status = constants.StatusSubmitted
	}
	if p, err := strconv.Atoi(rec.Get(FieldPoints)); err == nil {
		s.Points = p
	} else if f, err := strconv.ParseFloat(rec.Get(FieldPoints), 64); err == nil {
		// spreadsheet cells sometimes come back as "-2.0"
		s.Points = int(f)
	}

	return s
}

// ParseTimestamp accepts the store-local timestamp format and RFC3339.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(constants.TimestampFormat, value, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// IsValidDay reports whether day is a YYYY-MM-DD calendar date.
func IsValidDay(day string) bool {
	if day == "" {
		return false
	}
	_, err := time.Parse(constants.DateFormat, day)
	return err == nil
}
