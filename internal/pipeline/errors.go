package pipeline

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-notes-etl/internal/logging"
)

// Stage identifies a pipeline step.
type Stage string

// Pipeline stages, in execution order.
const (
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)

// StageError is a fatal failure inside one stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// fail logs err with its stage and wraps it in a StageError. PostgreSQL
// diagnostics are added when the error carries them.
func fail(stage Stage, err error) error {
	event := logging.Error().Err(err).Str("stage", string(stage))
	addPgDiagnostics(event, err)
	event.Msg("Pipeline stage failed")

	return &StageError{Stage: stage, Err: err}
}

func addPgDiagnostics(event *zerolog.Event, err error) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return
	}
	event.Str("sqlstate", pgErr.Code).
		Str("severity", pgErr.Severity).
		Str("detail", pgErr.Detail).
		Str("hint", pgErr.Hint).
		Str("where", pgErr.Where).
		Str("table", pgErr.TableName)
}
