package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/storeduty/internal/errors"
	"github.com/julianstephens/storeduty/internal/models"
)

const submissionColumns = `id, timestamp, date, store_id, employee_name, task_id,
	evidence, evidence_check, status, CAST(points AS TEXT)`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	values := make([]sql.NullString, len(models.RecordFields))
	dest := make([]interface{}, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	raw := make([]string, len(values))
	for i, v := range values {
		raw[i] = v.String
	}
	return models.RecordFromValues(raw), nil
}

func (s *Store) AppendSubmission(sub models.Submission) error {
	if err := s.ready(); err != nil {
		return err
	}

	rec := models.EncodeSubmission(sub, s.loc)
	_, err := s.db.Exec(`
		INSERT INTO submissions (id, timestamp, date, store_id, employee_name, task_id,
			evidence, evidence_check, status, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec[models.FieldID], rec[models.FieldTimestamp], rec[models.FieldDate],
		rec[models.FieldStoreID], rec[models.FieldEmployeeName], rec[models.FieldTaskID],
		rec[models.FieldEvidence], rec[models.FieldEvidenceCheck], rec[models.FieldStatus],
		sub.Points,
	)
	if err != nil {
		return fmt.Errorf("failed to append submission %s: %w", sub.ID, err)
	}
	return nil
}

func (s *Store) GetSubmission(id string) (models.Submission, error) {
	if err := s.ready(); err != nil {
		return models.Submission{}, err
	}

	row := s.db.QueryRow("SELECT "+submissionColumns+" FROM submissions WHERE id = $1", id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Submission{}, apperrors.NotFound("submission", id)
		}
		return models.Submission{}, err
	}
	return models.DecodeSubmission(rec, s.loc, s.ingestDay()), nil
}

func (s *Store) GetAllSubmissions() ([]models.Submission, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT " + submissionColumns + " FROM submissions ORDER BY date, timestamp, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	day := s.ingestDay()
	var subs []models.Submission
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, models.DecodeSubmission(rec, s.loc, day))
	}
	return subs, rows.Err()
}

// UpdateSubmission persists the mutable fields (status and points).
func (s *Store) UpdateSubmission(sub models.Submission) error {
	if err := s.ready(); err != nil {
		return err
	}

	res, err := s.db.Exec("UPDATE submissions SET status = $1, points = $2 WHERE id = $3",
		sub.Status, sub.Points, sub.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("submission", sub.ID)
	}
	return nil
}
