package domain

import "time"

// ThemeSummary describes one cluster of a run.
type ThemeSummary struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Size  int    `json:"size"`
}

// RunSummary is returned by a successful full-corpus classification.
type RunSummary struct {
	RunID      string         `json:"run_id"`
	Comments   int            `json:"comments"`
	Classified int            `json:"classified"`
	Themes     []ThemeSummary `json:"themes"`
	Cached     bool           `json:"cached"`
	DurationMs int64          `json:"duration_ms"`
	FinishedAt time.Time      `json:"finished_at"`
}

// RunStatus is the observable state of the classifier.
type RunStatus struct {
	Stage      RunStage    `json:"stage"`
	RunID      string      `json:"run_id,omitempty"`
	LastError  string      `json:"last_error,omitempty"`
	LastRun    *RunSummary `json:"last_run,omitempty"`
	AssignMode string      `json:"assign_mode"`
}

// ThemeGroup is a read view of all comments sharing a theme name.
type ThemeGroup struct {
	ThemeName string     `json:"theme_name"`
	Comments  []*Comment `json:"comments"`
}

// MapPoint is one plotted comment.
type MapPoint struct {
	ID        int64   `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ThemeName string  `json:"theme_name"`
	Comment   string  `json:"comment"`
	Upvotes   int     `json:"upvotes"`
}
