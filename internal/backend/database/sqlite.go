package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jo-hoe/goquantize/internal/backend/batch"
)

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writes from batch workers and keeps
	// ":memory:" databases from splitting across connections.
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase() (*sql.DB, error) {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		filter TEXT NOT NULL,
		source_dir TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		workers INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		succeeded INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS results (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		source TEXT NOT NULL,
		output TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL,
		PRIMARY KEY (run_id, source)
	)`)
	if err != nil {
		return nil, err
	}

	return s.db, nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist() bool {
	// SQLite creates the file on connect, so a successful ping is enough.
	err := s.db.Ping()
	return err == nil
}

func (s *SQLiteDatabase) StartRun(report batch.Report) error {
	_, err := s.db.Exec(
		"INSERT INTO runs (id, filter, source_dir, output_dir, workers, started_at) VALUES (?, ?, ?, ?, ?, ?)",
		report.RunID, string(report.Filter), report.SourceDir, report.OutputDir, report.Workers, report.Started.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", report.RunID, err)
	}
	return nil
}

func (s *SQLiteDatabase) RecordResult(runID string, result batch.Result) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO results (run_id, source, output, error, duration_ms) VALUES (?, ?, ?, ?, ?)",
		runID, result.Source, result.Output, result.Error, result.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to insert result for %s: %w", result.Source, err)
	}
	return nil
}

func (s *SQLiteDatabase) FinishRun(report batch.Report) error {
	res, err := s.db.Exec(
		"UPDATE runs SET finished_at = ?, succeeded = ?, failed = ? WHERE id = ?",
		report.Finished.UnixNano(), report.Succeeded, report.Failed, report.RunID)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", report.RunID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

const runColumns = "id, filter, source_dir, output_dir, workers, started_at, finished_at, succeeded, failed"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var started int64
	var finished sql.NullInt64
	if err := row.Scan(&run.ID, &run.Filter, &run.SourceDir, &run.OutputDir, &run.Workers,
		&started, &finished, &run.Succeeded, &run.Failed); err != nil {
		return nil, err
	}
	run.Started = time.Unix(0, started)
	if finished.Valid {
		t := time.Unix(0, finished.Int64)
		run.Finished = &t
	}
	return &run, nil
}

func (s *SQLiteDatabase) GetRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := s.db.Query("SELECT "+runColumns+" FROM runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteDatabase) GetRunByID(id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT source, output, error, duration_ms FROM results WHERE run_id = ? ORDER BY source", id)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var r RunResult
		if err := rows.Scan(&r.Source, &r.Output, &r.Error, &r.DurationMs); err != nil {
			return nil, err
		}
		run.Results = append(run.Results, r)
	}
	return run, rows.Err()
}
