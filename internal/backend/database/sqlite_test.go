package database

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jo-hoe/goquantize/internal/backend/batch"
	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
)

func newTestDB(t *testing.T) DatabaseService {
	t.Helper()

	ds, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteDatabase error: %v", err)
	}
	_, err = ds.CreateDatabase()
	if err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func sampleReport(id string, started time.Time) batch.Report {
	return batch.Report{
		RunID:     id,
		Filter:    filterstructure.Rubik,
		SourceDir: "/in",
		OutputDir: "/out",
		Workers:   4,
		Started:   started,
	}
}

func TestSQLite_DoesDatabaseExist(t *testing.T) {
	ds := newTestDB(t)
	if !ds.DoesDatabaseExist() {
		t.Fatalf("expected DoesDatabaseExist to return true")
	}
}

func TestSQLite_CreateDatabase_Idempotent(t *testing.T) {
	ds := newTestDB(t)
	if _, err := ds.CreateDatabase(); err != nil {
		t.Fatalf("second CreateDatabase error: %v", err)
	}
}

func TestSQLite_RunLifecycle(t *testing.T) {
	ds := newTestDB(t)
	started := time.Unix(1700000000, 0)
	report := sampleReport("run-1", started)

	if err := ds.StartRun(report); err != nil {
		t.Fatalf("StartRun error: %v", err)
	}

	run, err := ds.GetRunByID("run-1")
	if err != nil {
		t.Fatalf("GetRunByID error: %v", err)
	}
	if run.Finished != nil {
		t.Errorf("expected unfinished run, got finished=%v", run.Finished)
	}

	results := []batch.Result{
		{Source: "/in/b.png", Output: "/out/b.png", Duration: 15 * time.Millisecond},
		{Source: "/in/a.png", Error: "failed to decode", Duration: 2 * time.Millisecond},
	}
	for _, r := range results {
		if err := ds.RecordResult("run-1", r); err != nil {
			t.Fatalf("RecordResult error: %v", err)
		}
	}

	report.Finished = started.Add(time.Second)
	report.Succeeded, report.Failed = 1, 1
	if err := ds.FinishRun(report); err != nil {
		t.Fatalf("FinishRun error: %v", err)
	}

	run, err = ds.GetRunByID("run-1")
	if err != nil {
		t.Fatalf("GetRunByID error: %v", err)
	}
	finished := started.Add(time.Second)
	want := &Run{
		ID:        "run-1",
		Filter:    "rubik",
		SourceDir: "/in",
		OutputDir: "/out",
		Workers:   4,
		Started:   started,
		Finished:  &finished,
		Succeeded: 1,
		Failed:    1,
		Results: []RunResult{
			{Source: "/in/a.png", Error: "failed to decode", DurationMs: 2},
			{Source: "/in/b.png", Output: "/out/b.png", DurationMs: 15},
		},
	}
	if diff := cmp.Diff(want, run); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLite_GetRuns_NewestFirst(t *testing.T) {
	ds := newTestDB(t)
	base := time.Unix(1700000000, 0)
	for i, id := range []string{"old", "mid", "new"} {
		if err := ds.StartRun(sampleReport(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("StartRun(%s) error: %v", id, err)
		}
	}

	runs, err := ds.GetRuns(0)
	if err != nil {
		t.Fatalf("GetRuns error: %v", err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"new", "mid", "old"}, ids); diff != "" {
		t.Errorf("run order mismatch (-want +got):\n%s", diff)
	}

	limited, err := ds.GetRuns(2)
	if err != nil {
		t.Fatalf("GetRuns(2) error: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 runs, got %d", len(limited))
	}
}

func TestSQLite_NotFound(t *testing.T) {
	ds := newTestDB(t)

	if _, err := ds.GetRunByID("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if err := ds.FinishRun(sampleReport("missing", time.Now())); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestNewDatabase_UnsupportedType(t *testing.T) {
	if _, err := NewDatabase("postgres", "whatever"); err == nil {
		t.Error("expected error for unsupported database type")
	}
}

func TestNewDatabase_SQLite(t *testing.T) {
	ds, err := NewDatabase("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("NewDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = ds.Close() })
	if !ds.DoesDatabaseExist() {
		t.Error("expected database to exist")
	}
}
