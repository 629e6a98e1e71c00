package core

import "errors"

// ErrJournalDisabled is returned by run queries when no database is configured
var ErrJournalDisabled = errors.New("run journal is disabled")
