package sqlite

import (
	"fmt"
	"time"

	"github.com/julianstephens/storeduty/internal/models"
)

func (s *Store) AppendAdjustment(adj models.Adjustment) error {
	if err := s.ready(); err != nil {
		return err
	}
	if adj.ID == "" {
		return fmt.Errorf("adjustment id is required")
	}

	_, err := s.db.Exec(`
		INSERT INTO adjustments (id, submission_id, action, delta_points, new_status, actor, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		adj.ID, adj.SubmissionID, string(adj.Action), adj.DeltaPoints, adj.NewStatus,
		adj.Actor, adj.Note, adj.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to append adjustment %s: %w", adj.ID, err)
	}
	return nil
}

func (s *Store) GetAdjustments(submissionID string) ([]models.Adjustment, error) {
	return s.queryAdjustments("WHERE submission_id = ?", submissionID)
}

func (s *Store) GetAllAdjustments() ([]models.Adjustment, error) {
	return s.queryAdjustments("")
}

func (s *Store) HasAdjustment(id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM adjustments WHERE id = ?", id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) queryAdjustments(where string, args ...interface{}) ([]models.Adjustment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, submission_id, action, delta_points, new_status, actor, note, created_at
		FROM adjustments `+where+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trail []models.Adjustment
	for rows.Next() {
		var adj models.Adjustment
		var action, createdAt string
		if err := rows.Scan(&adj.ID, &adj.SubmissionID, &action, &adj.DeltaPoints,
			&adj.NewStatus, &adj.Actor, &adj.Note, &createdAt); err != nil {
			return nil, err
		}
		adj.Action = models.Action(action)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			adj.CreatedAt = t
		}
		trail = append(trail, adj)
	}
	return trail, rows.Err()
}
