package models

// TaskCompletion is the state of one (store, task) pair on one day.
type TaskCompletion struct {
	Completed      bool     `json:"completed"`
	Completers     []string `json:"completers"`
	FirstCompleter string   `json:"first_completer,omitempty"`
}

// CompletionReport maps store_id -> task_id -> completion for one day.
type CompletionReport struct {
	Date   string                               `json:"date"`
	Stores map[string]map[string]TaskCompletion `json:"stores"`
}

// StorePenalty is the automatic missing-task tally for one store on one day.
type StorePenalty struct {
	StoreID       string   `json:"store_id"`
	MissingCount  int      `json:"missing_count"`
	MissingTasks  []string `json:"missing_tasks"`
	PenaltyPoints int      `json:"penalty_points"`
}

// PenaltyReport is ordered worst store first.
type PenaltyReport struct {
	Date   string         `json:"date"`
	Stores []StorePenalty `json:"stores"`
}

// DayPenalty is one row of the historical view.
type DayPenalty struct {
	Date         string   `json:"date"`
	StoreID      string   `json:"store_id"`
	MissingCount int      `json:"missing_count"`
	MissingTasks []string `json:"missing_tasks"`
}

// StoreRanking is a store's missing-task total over every recorded day.
type StoreRanking struct {
	StoreID      string `json:"store_id"`
	TotalMissing int    `json:"total_missing"`
	Days         int    `json:"days"`
}

// Summary holds the headline dashboard counters for one day.
type Summary struct {
	Date         string `json:"date"`
	Reports      int    `json:"reports"`
	Anomalies    int    `json:"anomalies"` // submissions with points < 0
	ActiveStores int    `json:"active_stores"`
}
