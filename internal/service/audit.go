package service

import (
	"context"
	"errors"
	"strings"

	"github.com/julianstephens/storeduty/internal/audit"
	apperrors "github.com/julianstephens/storeduty/internal/errors"
	"github.com/julianstephens/storeduty/internal/logger"
	"github.com/julianstephens/storeduty/internal/models"
)

var errNoEvidenceStore = errors.New("no evidence store configured")

func (s *Service) lookup(id string) (models.Submission, error) {
	sub, err := s.store.GetSubmission(id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return models.Submission{}, err
		}
		return models.Submission{}, apperrors.Unavailable("read submission", err)
	}
	return sub, nil
}

// Audit records a manager's action against a submission and returns the
// updated submission. An unknown submission id is reported as NotFound and
// nothing is written.
func (s *Service) Audit(ctx context.Context, submissionID string, action models.Action, actor, note string) (models.Submission, models.Adjustment, error) {
	if err := ctx.Err(); err != nil {
		return models.Submission{}, models.Adjustment{}, err
	}
	sub, err := s.lookup(submissionID)
	if err != nil {
		return models.Submission{}, models.Adjustment{}, err
	}

	adj, err := audit.NewAdjustment(submissionID, action, actor, note, s.now())
	if err != nil {
		return models.Submission{}, models.Adjustment{}, apperrors.Invalid("action", "%v", err)
	}

	updated, err := s.apply(sub, adj)
	return updated, adj, err
}

// Reapply replays a previously minted adjustment. An adjustment whose id is
// already in the trail is skipped and applied is false.
func (s *Service) Reapply(ctx context.Context, adj models.Adjustment) (sub models.Submission, applied bool, err error) {
	if err := ctx.Err(); err != nil {
		return models.Submission{}, false, err
	}
	if strings.TrimSpace(adj.ID) == "" {
		return models.Submission{}, false, apperrors.Invalid("id", "adjustment id is required to reapply")
	}
	if _, ok := adj.Action.Rule(); !ok {
		return models.Submission{}, false, apperrors.Invalid("action", "unknown audit action %q", adj.Action)
	}

	sub, err = s.lookup(adj.SubmissionID)
	if err != nil {
		return models.Submission{}, false, err
	}

	seen, err := s.store.HasAdjustment(adj.ID)
	if err != nil {
		return models.Submission{}, false, apperrors.Unavailable("read audit trail", err)
	}
	if seen {
		logger.Info("Adjustment already applied, skipping", "adjustment", adj.ID, "submission", adj.SubmissionID)
		return sub, false, nil
	}

	sub, err = s.apply(sub, adj)
	return sub, err == nil, err
}

// apply appends adj to the trail, then writes the new status and points.
// The recorded delta and status always come from the action's rule.
func (s *Service) apply(sub models.Submission, adj models.Adjustment) (models.Submission, error) {
	updated, err := audit.Apply(sub, adj)
	if err != nil {
		return sub, apperrors.Invalid("action", "%v", err)
	}
	rule, _ := adj.Action.Rule()
	adj.DeltaPoints = rule.Delta
	adj.NewStatus = rule.Status

	if err := s.store.AppendAdjustment(adj); err != nil {
		logger.Error("Failed to record adjustment", "adjustment", adj.ID, "error", err)
		return sub, apperrors.Unavailable("append adjustment", err)
	}
	if err := s.store.UpdateSubmission(updated); err != nil {
		logger.Error("Failed to update submission", "submission", sub.ID, "error", err)
		return sub, apperrors.Unavailable("update submission", err)
	}

	logger.Info("Adjustment applied",
		"adjustment", adj.ID,
		"submission", sub.ID,
		"action", string(adj.Action),
		"actor", adj.Actor,
		"points", updated.Points,
		"status", updated.Status,
	)
	return updated, nil
}

// Trail returns the adjustments recorded against a submission, oldest first.
func (s *Service) Trail(ctx context.Context, submissionID string) ([]models.Adjustment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.lookup(submissionID); err != nil {
		return nil, err
	}
	trail, err := s.store.GetAdjustments(submissionID)
	if err != nil {
		return nil, apperrors.Unavailable("read audit trail", err)
	}
	return trail, nil
}

// Evidence fetches the photo attached to a submission.
func (s *Service) Evidence(ctx context.Context, submissionID string) ([]byte, error) {
	sub, err := s.lookup(submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Evidence == "" {
		return nil, apperrors.NotFound("evidence for submission", submissionID)
	}
	if s.evidence == nil {
		return nil, apperrors.Unavailable("fetch evidence", errNoEvidenceStore)
	}
	data, err := s.evidence.Get(ctx, sub.Evidence)
	if err != nil {
		return nil, apperrors.Unavailable("fetch evidence", err)
	}
	return data, nil
}
