package service

import (
	"context"

	"github.com/julianstephens/storeduty/internal/logger"
	"github.com/julianstephens/storeduty/internal/models"
	"github.com/julianstephens/storeduty/internal/reconcile"
)

// BoardView is one day's completion board and penalty ranking. Degraded is
// set when the store could not be read and the view is empty.
type BoardView struct {
	Date       string                  `json:"date"`
	Completion models.CompletionReport `json:"completion"`
	Penalties  models.PenaltyReport    `json:"penalties"`
	Degraded   bool                    `json:"degraded,omitempty"`
}

// HistoryView is the per-day penalty history and the cross-day ranking.
type HistoryView struct {
	Days     []models.DayPenalty   `json:"days"`
	Ranking  []models.StoreRanking `json:"ranking"`
	Degraded bool                  `json:"degraded,omitempty"`
}

// SummaryView carries the dashboard counters for one day.
type SummaryView struct {
	models.Summary
	Degraded bool `json:"degraded,omitempty"`
}

// LogView lists one day's submissions, newest first.
type LogView struct {
	Date        string              `json:"date"`
	Submissions []models.Submission `json:"submissions"`
	Degraded    bool                `json:"degraded,omitempty"`
}

// readAll loads the full history. A failed read is logged and reported as
// degraded so callers can still render an empty view.
func (s *Service) readAll(ctx context.Context) ([]models.Submission, bool) {
	if err := ctx.Err(); err != nil {
		logger.Warn("Read cancelled, returning empty report", "error", err)
		return nil, true
	}
	subs, err := s.store.GetAllSubmissions()
	if err != nil {
		logger.Warn("Submission store unavailable, returning empty report", "error", err)
		return nil, true
	}
	return subs, false
}

// TodayBoard is Board for the current day.
func (s *Service) TodayBoard(ctx context.Context) BoardView {
	return s.Board(ctx, s.Today())
}

// Board reconciles day.
func (s *Service) Board(ctx context.Context, day string) BoardView {
	subs, degraded := s.readAll(ctx)
	if degraded {
		return BoardView{
			Date:       day,
			Completion: models.CompletionReport{Date: day, Stores: map[string]map[string]models.TaskCompletion{}},
			Penalties:  models.PenaltyReport{Date: day, Stores: []models.StorePenalty{}},
			Degraded:   true,
		}
	}

	completion := reconcile.ComputeDailyCompletion(subs, s.catalog.Stores, s.catalog.Tasks, day)
	return BoardView{
		Date:       day,
		Completion: completion,
		Penalties:  reconcile.ComputeMissingTaskPenalty(completion, s.catalog.Tasks, s.excluded),
	}
}

// History reconciles every recorded day and ranks stores across them.
func (s *Service) History(ctx context.Context) HistoryView {
	subs, degraded := s.readAll(ctx)
	if degraded {
		return HistoryView{Days: []models.DayPenalty{}, Ranking: []models.StoreRanking{}, Degraded: true}
	}

	days := reconcile.ComputeHistoricalPenalties(subs, s.catalog.Stores, s.catalog.Tasks, s.excluded)
	return HistoryView{
		Days:    days,
		Ranking: reconcile.RankStores(days),
	}
}

// Summary returns the dashboard counters for day.
func (s *Service) Summary(ctx context.Context, day string) SummaryView {
	subs, degraded := s.readAll(ctx)
	return SummaryView{
		Summary:  reconcile.Summarize(subs, day),
		Degraded: degraded,
	}
}

// Submissions returns the raw log for day.
func (s *Service) Submissions(ctx context.Context, day string) LogView {
	subs, degraded := s.readAll(ctx)
	return LogView{
		Date:        day,
		Submissions: reconcile.DayLog(subs, day),
		Degraded:    degraded,
	}
}
