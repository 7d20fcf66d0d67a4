//-------------------------------------------------------------------------
//
// pgEdge Notes ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// End-to-end pipeline tests.
// Run with: go test -tags=integration ./internal/pipeline/...

package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-notes-etl/internal/config"
	"github.com/pgEdge/pgedge-notes-etl/internal/datagen"
	"github.com/pgEdge/pgedge-notes-etl/internal/db"
	"github.com/pgEdge/pgedge-notes-etl/internal/pipeline"
	"github.com/pgEdge/pgedge-notes-etl/internal/testutil"
	"github.com/pgEdge/pgedge-notes-etl/internal/warehouse"
)

func TestPipelineIntegration(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)

	connStr := testutil.CreateTestDB(t, baseConnStr, "pipeline")
	cleanup := testutil.NewTestCleanup(t, baseConnStr, testutil.GetDBNameFromConnStr(connStr))
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	input := filepath.Join(t.TempDir(), "notes.csv")
	var data bytes.Buffer
	opts := datagen.DefaultSampleOptions()
	opts.Rows = 250
	if err := datagen.WriteSample(&data, datagen.NewFakerWithSeed(2024), opts); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := os.WriteFile(input, data.Bytes(), 0o600); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Connection = connStr
	cfg.Input.Path = input
	cfg.Load.BatchSize = 100

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var out bytes.Buffer
	first, err := pipeline.Run(ctx, cfg, &out)
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if !strings.Contains(out.String(), "View created:         vw_notes_analysis") {
		t.Errorf("Expected summary on output, got:\n%s", out.String())
	}

	// A second run replaces rather than appends
	cfg.Load.Mode = config.LoadModeSwap
	second, err := pipeline.Run(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	for _, table := range []string{
		warehouse.TableTime, warehouse.TableUser, warehouse.TableSentiment,
		warehouse.TableKeyword, warehouse.TableFact,
	} {
		got := testutil.CountRows(t, pool, table)
		if got != first.Rows(table) || got != second.Rows(table) {
			t.Errorf("%s: expected %d rows on both runs, got %d in table", table, first.Rows(table), got)
		}
	}
	if n := testutil.CountRows(t, pool, warehouse.ViewAnalysis); n != opts.Rows {
		t.Errorf("Expected %d rows in view, got %d", opts.Rows, n)
	}

	var dangling int
	err = pool.QueryRow(ctx, `
        SELECT count(*) FROM fact_notes fn
        LEFT JOIN dim_time dt ON fn.time_id = dt.time_id
        LEFT JOIN dim_user du ON fn.user_id = du.user_id
        LEFT JOIN dim_sentiment ds ON fn.sentiment_id = ds.sentiment_id
        WHERE (fn.time_id IS NOT NULL AND dt.time_id IS NULL)
           OR (fn.user_id IS NOT NULL AND du.user_id IS NULL)
           OR (fn.sentiment_id IS NOT NULL AND ds.sentiment_id IS NULL)
    `).Scan(&dangling)
	if err != nil {
		t.Fatalf("Failed to check foreign keys: %v", err)
	}
	if dangling != 0 {
		t.Errorf("Expected no dangling foreign keys, got %d", dangling)
	}

	meta, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		t.Fatalf("GetAllMetadata failed: %v", err)
	}
	if meta["rows_fact"] != strconv.Itoa(opts.Rows) {
		t.Errorf("Expected rows_fact=%d, got %q", opts.Rows, meta["rows_fact"])
	}
	if meta["load_mode"] != config.LoadModeSwap {
		t.Errorf("Expected load_mode=%s, got %q", config.LoadModeSwap, meta["load_mode"])
	}
}

func TestPipelineUnreachableStore(t *testing.T) {
	input := filepath.Join(t.TempDir(), "notes.csv")
	var data bytes.Buffer
	if err := datagen.WriteSample(&data, datagen.NewFakerWithSeed(1), datagen.DefaultSampleOptions()); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := os.WriteFile(input, data.Bytes(), 0o600); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Connection = "postgres://nobody@127.0.0.1:1/none?connect_timeout=1"
	cfg.Input.Path = input

	_, err := pipeline.Run(context.Background(), cfg, nil)

	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != pipeline.StageLoad {
		t.Errorf("Expected load StageError, got %v", err)
	}
}
