//-------------------------------------------------------------------------
//
// pgEdge Notes ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline runs extract, transform and load once, in order.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-notes-etl/internal/config"
	"github.com/pgEdge/pgedge-notes-etl/internal/db"
	"github.com/pgEdge/pgedge-notes-etl/internal/extract"
	"github.com/pgEdge/pgedge-notes-etl/internal/load"
	"github.com/pgEdge/pgedge-notes-etl/internal/logging"
	"github.com/pgEdge/pgedge-notes-etl/internal/transform"
	"github.com/pgEdge/pgedge-notes-etl/internal/warehouse"
	"github.com/pgEdge/pgedge-notes-etl/pkg/version"
)

// Run executes the whole ETL with cfg and writes the summary to out.
// Any failure is returned as a *StageError.
func Run(ctx context.Context, cfg *config.Config, out io.Writer) (*load.Summary, error) {
	start := time.Now()
	logging.Info().Str("input", cfg.Input.Path).Msg("Starting notes ETL")

	raw, err := runExtract(ctx, cfg)
	if err != nil {
		return nil, fail(StageExtract, err)
	}

	schema, err := runTransform(ctx, cfg, raw)
	if err != nil {
		return nil, fail(StageTransform, err)
	}

	summary, err := runLoad(ctx, cfg, schema, raw.Encoding)
	if err != nil {
		return nil, fail(StageLoad, err)
	}

	summary.Log()
	if out != nil {
		fmt.Fprint(out, summary.String())
	}

	logging.Info().Dur("elapsed", time.Since(start)).Msg("Notes ETL completed")
	return summary, nil
}

func runExtract(ctx context.Context, cfg *config.Config) (*extract.Table, error) {
	opts, err := extractOptions(cfg.Input)
	if err != nil {
		return nil, err
	}
	extractor, err := extract.New(opts)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(ctx, cfg.Input.Path)
}

// extractOptions converts the input configuration; the delimiter must be
// a single character.
func extractOptions(in config.InputConfig) (extract.Options, error) {
	runes := []rune(in.Delimiter)
	if len(runes) != 1 {
		return extract.Options{}, fmt.Errorf("delimiter must be a single character, got %q", in.Delimiter)
	}
	return extract.Options{Delimiter: runes[0], Encodings: in.Encodings}, nil
}

func runTransform(ctx context.Context, cfg *config.Config, raw *extract.Table) (*warehouse.Schema, error) {
	loc, err := cfg.Transform.Location()
	if err != nil {
		return nil, err
	}
	return transform.New(loc).Transform(ctx, raw)
}

func runLoad(ctx context.Context, cfg *config.Config, schema *warehouse.Schema, encoding string) (*load.Summary, error) {
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	logPreviousLoad(ctx, pool)

	loader := load.New(pool, load.Options{Mode: cfg.Load.Mode, BatchSize: cfg.Load.BatchSize})
	summary, err := loader.Load(ctx, schema)
	if err != nil {
		return nil, err
	}

	if err := db.SaveMetadata(ctx, pool, runMetadata(cfg, summary, encoding)); err != nil {
		return nil, err
	}

	return summary, nil
}

// logPreviousLoad reports the run about to be replaced, if any.
func logPreviousLoad(ctx context.Context, database db.DB) {
	exists, err := db.MetadataExists(ctx, database)
	if err != nil || !exists {
		return
	}
	loadedAt, err := db.GetMetadataValue(ctx, database, "loaded_at")
	if err != nil {
		logging.Debug().Err(err).Msg("No previous load time recorded")
		return
	}
	logging.Info().Str("previous_load", loadedAt).Msg("Replacing previously loaded warehouse")
}

// runMetadata describes a completed run for the etl_metadata table.
func runMetadata(cfg *config.Config, summary *load.Summary, encoding string) map[string]string {
	return map[string]string{
		"version":        version.Short(),
		"loaded_at":      time.Now().UTC().Format(time.RFC3339),
		"source_file":    cfg.Input.Path,
		"encoding":       encoding,
		"load_mode":      summary.Mode,
		"rows_time":      strconv.Itoa(summary.Rows(warehouse.TableTime)),
		"rows_user":      strconv.Itoa(summary.Rows(warehouse.TableUser)),
		"rows_sentiment": strconv.Itoa(summary.Rows(warehouse.TableSentiment)),
		"rows_keyword":   strconv.Itoa(summary.Rows(warehouse.TableKeyword)),
		"rows_fact":      strconv.Itoa(summary.Rows(warehouse.TableFact)),
	}
}
