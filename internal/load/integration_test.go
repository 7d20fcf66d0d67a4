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

// Integration tests for the warehouse loader.
// Run with: go test -tags=integration ./internal/load/...
// Set PGEDGE_TEST_CONN to override the connection string.

package load_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pgEdge/pgedge-notes-etl/internal/load"
	"github.com/pgEdge/pgedge-notes-etl/internal/testutil"
	"github.com/pgEdge/pgedge-notes-etl/internal/warehouse"
)

func ptr[T any](v T) *T { return &v }

func sampleSchema() *warehouse.Schema {
	t1 := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 20, 18, 45, 0, 0, time.UTC)
	return &warehouse.Schema{
		Times: []warehouse.TimeDim{
			{TimeID: 1, CreatedAt: t1, Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				Year: 2024, Month: 1, Day: 15, DayOfWeek: "Monday", Hour: 10, Quarter: 1, WeekNumber: 3},
			{TimeID: 2, CreatedAt: t2, Date: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
				Year: 2024, Month: 1, Day: 20, DayOfWeek: "Saturday", Hour: 18, Quarter: 1, WeekNumber: 3, IsWeekend: true},
		},
		Users: []warehouse.UserDim{
			{UserID: 1, User: "alice", TotalNotes: 2, AvgSentiment: ptr(0.7)},
		},
		Sentiments: []warehouse.SentimentDim{
			{SentimentID: 1, Label: "positive", Category: warehouse.CategoryPositive},
		},
		Facts: []warehouse.FactNote{
			{NoteID: "a", TimeID: ptr(int64(1)), UserID: ptr(int64(1)), SentimentID: ptr(int64(1)),
				Score: ptr(0.9), CreatedAt: t1, NoteCount: 1, WordCount: 4},
			{NoteID: "b", TimeID: ptr(int64(2)), UserID: ptr(int64(1)),
				Score: ptr(0.5), CreatedAt: t2, NoteCount: 1, WordCount: 2},
		},
	}
}

func runLoad(t *testing.T, mode string) {
	baseConnStr := testutil.SkipIfNoPostgres(t)

	connStr := testutil.CreateTestDB(t, baseConnStr, "load_"+mode)
	cleanup := testutil.NewTestCleanup(t, baseConnStr, testutil.GetDBNameFromConnStr(connStr))
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	loader := load.New(pool, load.Options{Mode: mode, BatchSize: 1})

	// Run twice: the second run must replace, not append.
	for run := 1; run <= 2; run++ {
		summary, err := loader.Load(ctx, sampleSchema())
		if err != nil {
			t.Fatalf("Load run %d failed: %v", run, err)
		}
		if !summary.ViewCreated {
			t.Errorf("Run %d: expected view to be created", run)
		}
	}

	counts := map[string]int{
		warehouse.TableTime:      2,
		warehouse.TableUser:      1,
		warehouse.TableSentiment: 1,
		warehouse.TableFact:      2,
	}
	for table, want := range counts {
		if got := testutil.CountRows(t, pool, table); got != want {
			t.Errorf("Expected %d rows in %s, got %d", want, table, got)
		}
	}

	if testutil.TableExists(t, pool, warehouse.TableKeyword) {
		t.Error("Expected empty keyword dimension to be skipped")
	}
	if mode == load.ModeSwap && testutil.TableExists(t, pool, warehouse.TableFact+"_staging") {
		t.Error("Expected staging tables to be renamed away")
	}

	rows, err := pool.Query(ctx, `
        SELECT note_id, "user", sentiment_label
        FROM vw_notes_analysis ORDER BY note_id
    `)
	if err != nil {
		t.Fatalf("Failed to query view: %v", err)
	}
	defer rows.Close()

	type viewRow struct {
		NoteID string
		User   string
		Label  *string
	}
	var got []viewRow
	for rows.Next() {
		var r viewRow
		if err := rows.Scan(&r.NoteID, &r.User, &r.Label); err != nil {
			t.Fatalf("Failed to scan view row: %v", err)
		}
		got = append(got, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("View rows error: %v", err)
	}

	want := []viewRow{
		{NoteID: "a", User: "alice", Label: ptr("positive")},
		{NoteID: "b", User: "alice"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("View rows mismatch (-want +got):\n%s", diff)
	}

	var cols []string
	colRows, err := pool.Query(ctx, `
        SELECT column_name FROM information_schema.columns
        WHERE table_name = $1 ORDER BY ordinal_position
    `, warehouse.ViewAnalysis)
	if err != nil {
		t.Fatalf("Failed to query view columns: %v", err)
	}
	defer colRows.Close()
	for colRows.Next() {
		var c string
		if err := colRows.Scan(&c); err != nil {
			t.Fatalf("Failed to scan column: %v", err)
		}
		cols = append(cols, c)
	}
	if diff := cmp.Diff(load.ViewColumns, cols); diff != "" {
		t.Errorf("View columns mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadReplaceIntegration(t *testing.T) {
	runLoad(t, load.ModeReplace)
}

func TestLoadSwapIntegration(t *testing.T) {
	runLoad(t, load.ModeSwap)
}
