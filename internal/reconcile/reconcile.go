// Package reconcile derives per-day completion state and automatic
// missing-task penalties from the raw submission log. Every function here is
// a pure fold over its inputs: the same submissions always produce the same
// report, whatever order they arrive in.
package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/storeduty/internal/models"
)

type pairKey struct {
	store string
	task  string
}

// ComputeDailyCompletion reports, for every real store and every catalog
// task, whether at least one submission exists for targetDate and who made
// them. Submissions for other days, unknown stores, placeholder stores and
// unknown tasks are ignored.
func ComputeDailyCompletion(submissions []models.Submission, stores models.StoreCatalog, tasks models.TaskCatalog, targetDate string) models.CompletionReport {
	matches := make(map[pairKey][]models.Submission)
	for _, s := range submissions {
		if s.Date != targetDate {
			continue
		}
		if !stores.IsValid(s.StoreID) {
			continue
		}
		if _, ok := tasks.Get(s.TaskID); !ok {
			continue
		}
		k := pairKey{store: s.StoreID, task: s.TaskID}
		matches[k] = append(matches[k], s)
	}

	report := models.CompletionReport{
		Date:   targetDate,
		Stores: make(map[string]map[string]models.TaskCompletion),
	}
	for _, store := range stores.Real() {
		row := make(map[string]models.TaskCompletion, tasks.Len())
		for _, task := range tasks.Tasks() {
			row[task.ID] = completion(matches[pairKey{store: store.ID, task: task.ID}])
		}
		report.Stores[store.ID] = row
	}
	return report
}

// completion collapses the matching submissions of one pair. Completers are
// distinct names ordered by their earliest submission; rows whose timestamp
// could not be parsed sort after every timed row.
func completion(subs []models.Submission) models.TaskCompletion {
	if len(subs) == 0 {
		return models.TaskCompletion{Completers: []string{}}
	}

	earliest := make(map[string]time.Time)
	for _, s := range subs {
		name := strings.TrimSpace(s.EmployeeName)
		if name == "" {
			continue
		}
		prev, seen := earliest[name]
		if !seen || before(s.Timestamp, prev) {
			earliest[name] = s.Timestamp
		}
	}

	names := make([]string, 0, len(earliest))
	for name := range earliest {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ti, tj := earliest[names[i]], earliest[names[j]]
		if !ti.Equal(tj) {
			return before(ti, tj)
		}
		return names[i] < names[j]
	})

	tc := models.TaskCompletion{Completed: true, Completers: names}
	if len(names) > 0 {
		tc.FirstCompleter = names[0]
	}
	return tc
}

// before orders timestamps with the zero time last.
func before(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	default:
		return a.Before(b)
	}
}

// ComputeMissingTaskPenalty counts, per store, the catalog tasks outside
// excluded that were not completed. One point per missing task. The result is
// ordered by penalty descending, then store id ascending.
func ComputeMissingTaskPenalty(report models.CompletionReport, tasks models.TaskCatalog, excluded []string) models.PenaltyReport {
	skip := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}

	storeIDs := make([]string, 0, len(report.Stores))
	for id := range report.Stores {
		storeIDs = append(storeIDs, id)
	}
	sort.Strings(storeIDs)

	out := models.PenaltyReport{Date: report.Date, Stores: make([]models.StorePenalty, 0, len(storeIDs))}
	for _, storeID := range storeIDs {
		row := report.Stores[storeID]
		missing := []string{}
		for _, task := range tasks.Tasks() {
			if skip[task.ID] {
				continue
			}
			if !row[task.ID].Completed {
				missing = append(missing, task.ID)
			}
		}
		out.Stores = append(out.Stores, models.StorePenalty{
			StoreID:       storeID,
			MissingCount:  len(missing),
			MissingTasks:  missing,
			PenaltyPoints: len(missing),
		})
	}

	sort.SliceStable(out.Stores, func(i, j int) bool {
		if out.Stores[i].PenaltyPoints != out.Stores[j].PenaltyPoints {
			return out.Stores[i].PenaltyPoints > out.Stores[j].PenaltyPoints
		}
		return out.Stores[i].StoreID < out.Stores[j].StoreID
	})
	return out
}

// ComputeHistoricalPenalties reconciles every distinct day present in the
// history on its own. Rows are ordered by date, then store id.
func ComputeHistoricalPenalties(submissions []models.Submission, stores models.StoreCatalog, tasks models.TaskCatalog, excluded []string) []models.DayPenalty {
	byDate := make(map[string][]models.Submission)
	for _, s := range submissions {
		if s.Date == "" {
			continue
		}
		byDate[s.Date] = append(byDate[s.Date], s)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	history := []models.DayPenalty{}
	for _, day := range dates {
		report := ComputeDailyCompletion(byDate[day], stores, tasks, day)
		penalties := ComputeMissingTaskPenalty(report, tasks, excluded)

		rows := append([]models.StorePenalty(nil), penalties.Stores...)
		sort.Slice(rows, func(i, j int) bool { return rows[i].StoreID < rows[j].StoreID })
		for _, p := range rows {
			history = append(history, models.DayPenalty{
				Date:         day,
				StoreID:      p.StoreID,
				MissingCount: p.MissingCount,
				MissingTasks: p.MissingTasks,
			})
		}
	}
	return history
}

// RankStores sums missing tasks per store across all days in history, worst
// first, ties broken by store id.
func RankStores(history []models.DayPenalty) []models.StoreRanking {
	totals := make(map[string]*models.StoreRanking)
	for _, row := range history {
		r, ok := totals[row.StoreID]
		if !ok {
			r = &models.StoreRanking{StoreID: row.StoreID}
			totals[row.StoreID] = r
		}
		r.TotalMissing += row.MissingCount
		r.Days++
	}

	ranking := make([]models.StoreRanking, 0, len(totals))
	for _, r := range totals {
		ranking = append(ranking, *r)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].TotalMissing != ranking[j].TotalMissing {
			return ranking[i].TotalMissing > ranking[j].TotalMissing
		}
		return ranking[i].StoreID < ranking[j].StoreID
	})
	return ranking
}

// DefaultExclusions returns the tasks that cannot be missing at store level:
// personal tasks and photo-verified tasks.
func DefaultExclusions(tasks models.TaskCatalog) []string {
	var ids []string
	for _, t := range tasks.Tasks() {
		if t.Personal || t.RequiresPhoto {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Summarize computes the dashboard counters for day.
func Summarize(submissions []models.Submission, day string) models.Summary {
	sum := models.Summary{Date: day}
	active := make(map[string]bool)
	for _, s := range submissions {
		if s.Date != day {
			continue
		}
		sum.Reports++
		if s.Points < 0 {
			sum.Anomalies++
		}
		if s.StoreID != "" {
			active[s.StoreID] = true
		}
	}
	sum.ActiveStores = len(active)
	return sum
}

// DayLog returns the submissions for day, newest first. Rows with equal or
// missing timestamps keep a stable order by id.
func DayLog(submissions []models.Submission, day string) []models.Submission {
	out := []models.Submission{}
	for _, s := range submissions {
		if s.Date == day {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Timestamp, out[j].Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
