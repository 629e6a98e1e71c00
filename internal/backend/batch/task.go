package batch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jo-hoe/goquantize/internal/backend/filters"
	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
	"github.com/jo-hoe/goquantize/internal/backend/imagefile"
	"github.com/jo-hoe/goquantize/internal/backend/naming"
)

// Task is one unit of work: filter one source file into the output location
type Task struct {
	Source    string
	Filter    filterstructure.Selector
	OutputDir string
	Args      filterstructure.Args
}

// Result is the outcome of a single task
type Result struct {
	Source   string        `json:"source"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"durationNs"`
	Err      error         `json:"-"`
}

// OK reports whether the task produced an output file
func (r Result) OK() bool {
	return r.Err == nil
}

// Process opens the task's source, applies its filter and saves the result
// without overwriting anything. It returns the path that was written.
func Process(task Task, saver imagefile.Saver) (string, error) {
	filter, err := filters.New(task.Filter, task.Args)
	if err != nil {
		return "", err
	}

	img, err := imagefile.Open(task.Source)
	if err != nil {
		return "", err
	}

	filter.Apply(img)

	saved, err := saver.Save(img, naming.Target(task.Source, task.OutputDir))
	if err != nil {
		return "", fmt.Errorf("failed to save %s: %w", task.Source, err)
	}
	return saved, nil
}

// ProcessFile filters a single image synchronously.
// An empty destination writes next to the source under a fresh name.
func ProcessFile(source string, selector filterstructure.Selector, destination string, args filterstructure.Args, saver imagefile.Saver) (string, error) {
	start := time.Now()
	saved, err := Process(Task{Source: source, Filter: selector, OutputDir: destination, Args: args}, saver)
	if err != nil {
		slog.Error("failed to process image",
			"source", source,
			"filter", selector,
			"error", err)
		return "", err
	}
	slog.Info("image processed",
		"source", source,
		"filter", selector,
		"output", saved,
		"duration_ms", time.Since(start).Milliseconds())
	return saved, nil
}

// run executes the task and converts errors and panics into a Result
func (t Task) run(saver imagefile.Saver) (res Result) {
	start := time.Now()
	res.Source = t.Source
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic while processing %s: %v", t.Source, r)
		}
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
		res.Duration = time.Since(start)
	}()

	res.Output, res.Err = Process(t, saver)
	return res
}
