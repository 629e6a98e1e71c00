package batch

import (
	"time"

	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
)

// Report summarizes one batch run
type Report struct {
	RunID     string                   `json:"runId"`
	Filter    filterstructure.Selector `json:"filter"`
	SourceDir string                   `json:"sourceDir"`
	OutputDir string                   `json:"outputDir"`
	Workers   int                      `json:"workers"`
	Started   time.Time                `json:"started"`
	Finished  time.Time                `json:"finished"`
	Succeeded int                      `json:"succeeded"`
	Failed    int                      `json:"failed"`
	Results   []Result                 `json:"results"`
}

// Total is the number of dispatched tasks
func (r Report) Total() int {
	return len(r.Results)
}

// Failures returns the results of the tasks that did not produce output
func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) tally() {
	r.Succeeded, r.Failed = 0, 0
	for _, res := range r.Results {
		if res.OK() {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}
}
