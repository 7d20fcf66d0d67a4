//-------------------------------------------------------------------------
//
// pgEdge Notes ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package load writes the star schema to PostgreSQL and (re)creates the
// reporting view.
package load

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-notes-etl/internal/db"
	"github.com/pgEdge/pgedge-notes-etl/internal/logging"
	"github.com/pgEdge/pgedge-notes-etl/internal/warehouse"
)

// Load modes.
const (
	// ModeReplace drops and recreates each table in place, one table per
	// transaction.
	ModeReplace = "replace"

	// ModeSwap copies every table into a staging table first and renames
	// all of them over the live tables in a single transaction.
	ModeSwap = "swap"
)

const stagingSuffix = "_staging"

// Options configures the loader.
type Options struct {
	Mode      string
	BatchSize int
}

// DefaultOptions returns replace mode with 1000-row copy chunks.
func DefaultOptions() Options {
	return Options{Mode: ModeReplace, BatchSize: 1000}
}

// Loader writes warehouse tables through a verified connection.
type Loader struct {
	db   db.DB
	opts Options
}

// New creates a loader. The caller owns the connection and must have
// verified it before any write.
func New(database db.DB, opts Options) *Loader {
	if opts.Mode == "" {
		opts.Mode = ModeReplace
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	return &Loader{db: database, opts: opts}
}

// Load writes the five tables (time, user, sentiment, keyword, fact) and
// recreates the reporting view. An empty keyword dimension is skipped.
// Already-loaded tables are not rolled back when a later step fails.
func (l *Loader) Load(ctx context.Context, schema *warehouse.Schema) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Mode: l.opts.Mode, View: warehouse.ViewAnalysis}

	logging.Info().Str("mode", l.opts.Mode).Msg("Loading warehouse tables")

	var staged, skipped []*tableDef
	for _, t := range tableDefs(schema) {
		if t.optional && len(t.rows) == 0 {
			logging.Info().Str("table", t.name).Msg("No rows, skipping table")
			summary.Tables = append(summary.Tables, TableCount{Table: t.name, Skipped: true})
			skipped = append(skipped, t)
			if l.opts.Mode == ModeReplace {
				if err := l.dropTable(ctx, t.name); err != nil {
					return nil, err
				}
			}
			continue
		}

		var err error
		switch l.opts.Mode {
		case ModeReplace:
			err = l.replaceTable(ctx, t)
		case ModeSwap:
			err = l.stageTable(ctx, t)
			staged = append(staged, t)
		default:
			err = fmt.Errorf("unknown load mode %q", l.opts.Mode)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", t.name, err)
		}
		summary.Tables = append(summary.Tables, TableCount{Table: t.name, Rows: len(t.rows)})
	}

	if l.opts.Mode == ModeSwap {
		if err := l.swapTables(ctx, staged, skipped); err != nil {
			return nil, err
		}
	}

	logging.Info().Msg("All tables loaded")

	if err := recreateView(ctx, l.db); err != nil {
		return nil, err
	}
	summary.ViewCreated = true
	summary.Duration = time.Since(start)

	return summary, nil
}

// replaceTable drops, recreates and fills the table in one transaction.
// CASCADE also drops the reporting view, which is recreated at the end.
func (l *Loader) replaceTable(ctx context.Context, t *tableDef) error {
	logging.Info().Str("table", t.name).Int("rows", len(t.rows)).Msg("Loading table")

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE",
		pgx.Identifier{t.name}.Sanitize())); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if err := l.fill(ctx, tx, t, t.name); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// stageTable loads the table into its staging twin.
func (l *Loader) stageTable(ctx context.Context, t *tableDef) error {
	staging := t.name + stagingSuffix
	logging.Info().Str("table", staging).Int("rows", len(t.rows)).Msg("Staging table")

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s",
		pgx.Identifier{staging}.Sanitize())); err != nil {
		return fmt.Errorf("failed to drop staging table: %w", err)
	}
	if err := l.fill(ctx, tx, t, staging); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// dropTable removes a live table that has no rows in this run.
func (l *Loader) dropTable(ctx context.Context, name string) error {
	if _, err := l.db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE",
		pgx.Identifier{name}.Sanitize())); err != nil {
		return fmt.Errorf("failed to drop %s: %w", name, err)
	}
	return nil
}

// swapTables renames every staging table over its live table at once.
// Skipped tables are dropped in the same transaction.
func (l *Loader) swapTables(ctx context.Context, staged, skipped []*tableDef) error {
	logging.Info().Int("tables", len(staged)).Msg("Swapping staging tables")

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin swap transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range skipped {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE",
			pgx.Identifier{t.name}.Sanitize())); err != nil {
			return fmt.Errorf("failed to drop %s: %w", t.name, err)
		}
	}

	for _, t := range staged {
		live := pgx.Identifier{t.name}.Sanitize()
		if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", live)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", t.name, err)
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s",
			pgx.Identifier{t.name + stagingSuffix}.Sanitize(), live)); err != nil {
			return fmt.Errorf("failed to swap %s: %w", t.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit swap: %w", err)
	}
	return nil
}

// fill creates the table under name, copies its rows in batches and
// builds its indexes.
func (l *Loader) fill(ctx context.Context, tx pgx.Tx, t *tableDef, name string) error {
	if _, err := tx.Exec(ctx, t.createSQL(name)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	columns := t.columnNames()
	progress := newProgressReporter(name, int64(len(t.rows)), int64(l.opts.BatchSize))

	for start := 0; start < len(t.rows); start += l.opts.BatchSize {
		end := min(start+l.opts.BatchSize, len(t.rows))
		n, err := tx.CopyFrom(ctx, pgx.Identifier{name}, columns, pgx.CopyFromRows(t.rows[start:end]))
		if err != nil {
			return fmt.Errorf("failed to copy rows %d-%d into %s: %w", start, end, name, err)
		}
		progress.update(n)
	}

	for _, stmt := range t.indexSQL(name) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to index %s: %w", name, err)
		}
	}

	progress.done()
	return nil
}
