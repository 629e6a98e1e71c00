package batch

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jo-hoe/goquantize/internal/backend/filters"
	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
	"github.com/jo-hoe/goquantize/internal/backend/imagefile"
)

// Recorder receives the lifecycle of a batch run, e.g. to persist it.
// RecordResult is called from worker goroutines and must be safe for concurrent use.
type Recorder interface {
	StartRun(report Report) error
	RecordResult(runID string, result Result) error
	FinishRun(report Report) error
}

// Dispatcher fans a filter out over a directory with a fixed worker pool
type Dispatcher struct {
	workers  int
	saver    imagefile.Saver
	recorder Recorder
}

// NewDispatcher creates a dispatcher. workers <= 0 means one worker per CPU;
// recorder may be nil.
func NewDispatcher(workers int, saver imagefile.Saver, recorder Recorder) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Dispatcher{
		workers:  workers,
		saver:    saver,
		recorder: recorder,
	}
}

// Workers returns the pool size
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Run applies selector to every eligible file in sourceDir and writes the
// outputs into outputDir (or next to the sources when outputDir is empty).
// It blocks until all tasks finish. A failing task does not stop the others;
// its error is recorded in the returned Report. The error return covers only
// problems that prevent dispatch altogether.
func (d *Dispatcher) Run(selector filterstructure.Selector, sourceDir, outputDir string, args filterstructure.Args) (Report, error) {
	if _, err := filters.New(selector, args); err != nil {
		return Report{}, err
	}

	files, err := Discover(sourceDir)
	if err != nil {
		return Report{}, err
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return Report{}, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	workers := d.workers
	if workers > len(files) {
		workers = len(files)
	}

	report := Report{
		RunID:     uuid.NewString(),
		Filter:    selector,
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Workers:   workers,
		Started:   time.Now(),
	}

	slog.Info("starting batch run",
		"run_id", report.RunID,
		"filter", selector,
		"source_dir", sourceDir,
		"output_dir", outputDir,
		"file_count", len(files),
		"workers", workers)

	d.startRun(report)

	results := make([]Result, len(files))
	queue := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range queue {
				task := Task{Source: files[i], Filter: selector, OutputDir: outputDir, Args: args}
				res := task.run(d.saver)
				d.logResult(report.RunID, res)
				d.recordResult(report.RunID, res)
				results[i] = res
			}
		}()
	}

	for i := range files {
		queue <- i
	}
	close(queue)
	wg.Wait()

	report.Results = results
	report.Finished = time.Now()
	report.tally()

	d.finishRun(report)

	slog.Info("batch run completed",
		"run_id", report.RunID,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"total_duration_ms", report.Finished.Sub(report.Started).Milliseconds())

	return report, nil
}

func (d *Dispatcher) logResult(runID string, res Result) {
	if res.Err != nil {
		slog.Error("task failed",
			"run_id", runID,
			"source", res.Source,
			"error", res.Err)
		return
	}
	slog.Info("task completed",
		"run_id", runID,
		"source", res.Source,
		"output", res.Output,
		"duration_ms", res.Duration.Milliseconds())
}

// Recorder failures are logged and never affect the run itself.

func (d *Dispatcher) startRun(report Report) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.StartRun(report); err != nil {
		slog.Error("failed to record run start", "run_id", report.RunID, "error", err)
	}
}

func (d *Dispatcher) recordResult(runID string, res Result) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.RecordResult(runID, res); err != nil {
		slog.Error("failed to record task result", "run_id", runID, "source", res.Source, "error", err)
	}
}

func (d *Dispatcher) finishRun(report Report) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.FinishRun(report); err != nil {
		slog.Error("failed to record run end", "run_id", report.RunID, "error", err)
	}
}
