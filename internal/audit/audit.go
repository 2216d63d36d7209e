// Package audit applies a manager's manual point and status corrections to
// individual submissions.
package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/storeduty/internal/models"
)

// NewAdjustment mints an adjustment for action against submissionID.
func NewAdjustment(submissionID string, action models.Action, actor, note string, now time.Time) (models.Adjustment, error) {
	rule, ok := action.Rule()
	if !ok {
		return models.Adjustment{}, fmt.Errorf("unknown audit action %q", action)
	}
	return models.Adjustment{
		ID:           uuid.New().String(),
		SubmissionID: submissionID,
		Action:       action,
		DeltaPoints:  rule.Delta,
		NewStatus:    rule.Status,
		Actor:        actor,
		Note:         note,
		CreatedAt:    now,
	}, nil
}

// Apply returns s with adj applied. Fault actions accumulate: applying two
// distinct major faults deducts four points. Revoke resets points to exactly
// zero no matter what was deducted before.
func Apply(s models.Submission, adj models.Adjustment) (models.Submission, error) {
	if adj.SubmissionID != s.ID {
		return s, fmt.Errorf("adjustment %s targets submission %s, not %s", adj.ID, adj.SubmissionID, s.ID)
	}
	rule, ok := adj.Action.Rule()
	if !ok {
		return s, fmt.Errorf("unknown audit action %q", adj.Action)
	}

	if rule.Reset {
		s.Points = 0
	} else {
		s.Points += rule.Delta
	}
	s.Status = rule.Status
	return s, nil
}

// Replay rebuilds status and points by applying trail to base in order,
// skipping adjustments whose id was already seen.
func Replay(base models.Submission, trail []models.Adjustment) (models.Submission, error) {
	seen := make(map[string]bool, len(trail))
	s := base
	for _, adj := range trail {
		if adj.ID != "" && seen[adj.ID] {
			continue
		}
		seen[adj.ID] = true

		var err error
		if s, err = Apply(s, adj); err != nil {
			return base, err
		}
	}
	return s, nil
}

// Applied reports whether trail already contains the adjustment id.
func Applied(trail []models.Adjustment, id string) bool {
	for _, adj := range trail {
		if adj.ID == id {
			return true
		}
	}
	return false
}
