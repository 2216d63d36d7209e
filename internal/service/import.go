package service

import (
	"context"

	apperrors "github.com/julianstephens/storeduty/internal/errors"
	"github.com/julianstephens/storeduty/internal/importer"
	"github.com/julianstephens/storeduty/internal/logger"
	"github.com/julianstephens/storeduty/internal/models"
)

// ImportResult counts the rows of one import.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// ImportFile loads a legacy spreadsheet log into the store. Rows whose id is
// already stored are skipped, so re-running an import is harmless.
func (s *Service) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	subs, err := importer.New(s.catalog, s.Location()).ImportFile(path, s.Today())
	if err != nil {
		return ImportResult{}, err
	}
	return s.importSubmissions(ctx, subs)
}

func (s *Service) importSubmissions(ctx context.Context, subs []models.Submission) (ImportResult, error) {
	var res ImportResult
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, err := s.store.GetSubmission(sub.ID)
		switch {
		case err == nil:
			res.Skipped++
			continue
		case !apperrors.Is(err, apperrors.ErrNotFound):
			return res, apperrors.Unavailable("read submission", err)
		}
		if err := s.store.AppendSubmission(sub); err != nil {
			return res, apperrors.Unavailable("append submission", err)
		}
		res.Added++
	}
	logger.Info("Import finished", "added", res.Added, "skipped", res.Skipped)
	return res, nil
}
