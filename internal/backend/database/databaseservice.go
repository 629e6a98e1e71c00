package database

import (
	"database/sql"
	"errors"

	"github.com/jo-hoe/goquantize/internal/backend/batch"
)

// ErrRunNotFound is returned when no run has the requested ID
var ErrRunNotFound = errors.New("run not found")

// DatabaseService is the run journal. It doubles as a batch.Recorder.
type DatabaseService interface {
	batch.Recorder

	CreateDatabase() (*sql.DB, error)
	DoesDatabaseExist() bool
	Close() error

	// GetRuns returns the most recent runs first, without their results.
	GetRuns(limit int) ([]*Run, error)
	// GetRunByID returns a run together with its task results.
	GetRunByID(id string) (*Run, error)
}
