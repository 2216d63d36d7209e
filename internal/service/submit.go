package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/storeduty/internal/constants"
	apperrors "github.com/julianstephens/storeduty/internal/errors"
	"github.com/julianstephens/storeduty/internal/evidence"
	"github.com/julianstephens/storeduty/internal/logger"
	"github.com/julianstephens/storeduty/internal/models"
	"github.com/julianstephens/storeduty/internal/utils"
	"github.com/julianstephens/storeduty/internal/validation"
)

// Submit validates req and appends it to the store. The photo's capture time
// is checked on the raw upload before it is compressed, since re-encoding
// drops EXIF. Nothing is stored when validation fails.
func (s *Service) Submit(ctx context.Context, req validation.Request) (models.Submission, validation.Result, error) {
	settings := s.Settings()
	loc := utils.LocationFromSettings(settings)
	now := s.now().In(loc).Truncate(time.Second)
	today := now.Format(constants.DateFormat)

	task, known := s.catalog.Tasks.Get(strings.TrimSpace(req.TaskID))
	check := models.EvidenceNotRequired
	if known && task.RequiresPhoto && len(req.Photo) > 0 {
		check = evidence.Check(req.Photo, today, loc)
	}

	validator := validation.New(s.catalog.Stores, s.catalog.Tasks, settings.StrictEvidence)
	result, err := validator.Validate(req, check)
	if err != nil {
		logger.Warn("Submission rejected", "store", req.StoreID, "task", req.TaskID, "employee", req.EmployeeName, "reason", err)
		return models.Submission{}, result, err
	}

	sub := models.Submission{
		ID:           uuid.New().String(),
		Timestamp:    now,
		Date:         today,
		StoreID:      strings.TrimSpace(req.StoreID),
		EmployeeName: strings.TrimSpace(req.EmployeeName),
		TaskID:       task.ID,
		Status:       constants.StatusSubmitted,
	}

	if task.RequiresPhoto {
		if s.evidence == nil {
			return models.Submission{}, result, apperrors.Unavailable("store evidence", errNoEvidenceStore)
		}
		data, name := evidence.CompressPhoto(req.Photo, req.PhotoName, evidence.CompressOptions{
			MaxEdge: settings.PhotoMaxEdge,
			Quality: settings.PhotoQuality,
		})
		ref, err := s.evidence.Put(ctx, data, name)
		if err != nil {
			logger.Error("Failed to store evidence", "submission", sub.ID, "error", err)
			return models.Submission{}, result, apperrors.Unavailable("store evidence", err)
		}
		sub.Evidence = ref
		sub.EvidenceCheck = check
	}

	if err := s.store.AppendSubmission(sub); err != nil {
		// The blob is already stored; log its ref so it can be found and removed.
		logger.Error("Failed to append submission", "submission", sub.ID, "evidence", sub.Evidence, "error", err)
		return models.Submission{}, result, apperrors.Unavailable("append submission", err)
	}

	logger.Info("Submission accepted",
		"submission", sub.ID,
		"store", sub.StoreID,
		"task", sub.TaskID,
		"employee", sub.EmployeeName,
		"evidence_check", string(sub.EvidenceCheck),
	)
	return sub, result, nil
}
