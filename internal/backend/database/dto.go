package database

import "time"

// Run is a persisted batch run
type Run struct {
	ID        string      `db:"id" json:"id"`
	Filter    string      `db:"filter" json:"filter"`
	SourceDir string      `db:"source_dir" json:"sourceDir"`
	OutputDir string      `db:"output_dir" json:"outputDir"`
	Workers   int         `db:"workers" json:"workers"`
	Started   time.Time   `db:"started_at" json:"started"`
	Finished  *time.Time  `db:"finished_at" json:"finished,omitempty"` // nil while the run is in progress
	Succeeded int         `db:"succeeded" json:"succeeded"`
	Failed    int         `db:"failed" json:"failed"`
	Results   []RunResult `json:"results,omitempty"`
}

// RunResult is the persisted outcome of one task of a run
type RunResult struct {
	Source     string `db:"source" json:"source"`
	Output     string `db:"output" json:"output,omitempty"`
	Error      string `db:"error" json:"error,omitempty"`
	DurationMs int64  `db:"duration_ms" json:"durationMs"`
}
