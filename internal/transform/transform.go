//-------------------------------------------------------------------------
//
// pgEdge Notes ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package transform reshapes a flat notes export into the star schema.
package transform

import (
	"context"
	"time"

	"github.com/pgEdge/pgedge-notes-etl/internal/extract"
	"github.com/pgEdge/pgedge-notes-etl/internal/logging"
	"github.com/pgEdge/pgedge-notes-etl/internal/warehouse"
)

// note is one export row that survived cleaning, with typed values.
type note struct {
	id          string
	createdAt   time.Time
	updatedAt   *time.Time
	user        string
	content     string
	hasContent  bool
	// label is empty when hasLabel is false
	label       string
	hasLabel    bool
	score       *float64
	comparative *float64
	rawScore    *float64

	// row is the position in the raw table, used for keyword columns.
	row int
}

// Transformer builds dimensions and facts from an extracted table.
type Transformer struct {
	loc *time.Location
}

// New creates a transformer deriving calendar attributes in loc.
// A nil loc means UTC.
func New(loc *time.Location) *Transformer {
	if loc == nil {
		loc = time.UTC
	}
	return &Transformer{loc: loc}
}

// Transform runs every transformation step in order and returns the
// sanitized schema. A missing required column is an error; bad
// individual values become nulls.
func (t *Transformer) Transform(ctx context.Context, raw *extract.Table) (*warehouse.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logging.Info().Int("rows", raw.Len()).Msg("Transforming notes")

	cols, err := resolveColumns(NormalizeColumns(raw.Columns))
	if err != nil {
		return nil, err
	}

	notes, dropped := cleanNotes(raw, cols)
	if dropped > 0 {
		logging.Warn().
			Int("dropped", dropped).
			Msg("Dropped rows without a creation timestamp or user")
	}

	schema := &warehouse.Schema{}
	timeKeys := newSurrogateKeys[time.Time]()
	userKeys := newSurrogateKeys[string]()
	labelKeys := newSurrogateKeys[string]()

	schema.Times = buildTimes(notes, timeKeys, t.loc)
	schema.Users = buildUsers(notes, userKeys)
	schema.Sentiments = buildSentiments(notes, labelKeys)
	schema.Keywords = buildKeywords(raw, notes, cols.keywords)
	if len(schema.Keywords) == 0 {
		logging.Info().Msg("No keywords found")
	} else {
		logging.Info().Int("keywords", len(schema.Keywords)).Msg("Unique keywords found")
	}
	schema.Facts = buildFacts(notes, timeKeys, userKeys, labelKeys)

	schema.Sanitize()

	event := logging.Info()
	for table, rows := range schema.RowCounts() {
		event = event.Int(table, rows)
	}
	event.Msg("Transformations complete")

	return schema, nil
}

// cleanNotes parses typed values and drops rows missing a parsed
// creation timestamp or a user.
func cleanNotes(raw *extract.Table, cols columnIndex) ([]note, int) {
	notes := make([]note, 0, raw.Len())
	dropped := 0

	for r := range raw.Rows {
		var n note
		n.row = r

		created, ok := raw.Value(r, cols.createdAt)
		if ok {
			n.createdAt, ok = parseTimestamp(created)
		}
		user, hasUser := raw.Value(r, cols.user)
		if !ok || !hasUser {
			dropped++
			continue
		}
		n.user = user

		if updated, ok := raw.Value(r, cols.updatedAt); ok {
			if ts, ok := parseTimestamp(updated); ok {
				n.updatedAt = &ts
			}
		}

		n.id, _ = raw.Value(r, cols.noteID)
		n.content, n.hasContent = raw.Value(r, cols.content)
		n.label, n.hasLabel = raw.Value(r, cols.label)

		if s, ok := raw.Value(r, cols.score); ok {
			n.score = parseFloat(s)
		}
		if s, ok := raw.Value(r, cols.comparative); ok {
			n.comparative = parseFloat(s)
		}
		if s, ok := raw.Value(r, cols.rawScore); ok {
			n.rawScore = parseFloat(s)
		}

		notes = append(notes, n)
	}

	return notes, dropped
}
