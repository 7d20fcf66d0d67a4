package load

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-notes-etl/internal/warehouse"
)

// column is a warehouse column and its PostgreSQL type.
type column struct {
	name string
	ddl  string
}

// tableDef describes one warehouse table and the rows to write into it.
type tableDef struct {
	name    string
	columns []column
	// indexed columns get a plain btree index after the copy
	indexed []string
	rows    [][]any
	// optional tables are skipped when they have no rows
	optional bool
}

func (t *tableDef) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// createSQL returns the CREATE TABLE statement for the table under name.
func (t *tableDef) createSQL(name string) string {
	defs := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = fmt.Sprintf("    %s %s", pgx.Identifier{c.name}.Sanitize(), c.ddl)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)",
		pgx.Identifier{name}.Sanitize(), strings.Join(defs, ",\n"))
}

// indexSQL returns CREATE INDEX statements for the table under name.
func (t *tableDef) indexSQL(name string) []string {
	stmts := make([]string, len(t.indexed))
	for i, col := range t.indexed {
		stmts[i] = fmt.Sprintf("CREATE INDEX ON %s (%s)",
			pgx.Identifier{name}.Sanitize(), pgx.Identifier{col}.Sanitize())
	}
	return stmts
}

// tableDefs returns the warehouse tables in load order.
func tableDefs(s *warehouse.Schema) []*tableDef {
	return []*tableDef{
		timeTable(s.Times),
		userTable(s.Users),
		sentimentTable(s.Sentiments),
		keywordTable(s.Keywords),
		factTable(s.Facts),
	}
}

func timeTable(dims []warehouse.TimeDim) *tableDef {
	rows := make([][]any, len(dims))
	for i, d := range dims {
		rows[i] = []any{
			d.TimeID, d.CreatedAt, d.Date, d.Year, d.Month, d.Day,
			d.DayOfWeek, d.Hour, d.Quarter, d.WeekNumber, d.IsWeekend,
		}
	}
	return &tableDef{
		name: warehouse.TableTime,
		columns: []column{
			{"time_id", "BIGINT PRIMARY KEY"},
			{"createdat", "TIMESTAMPTZ NOT NULL"},
			{"date", "DATE NOT NULL"},
			{"year", "INTEGER NOT NULL"},
			{"month", "INTEGER NOT NULL"},
			{"day", "INTEGER NOT NULL"},
			{"day_of_week", "TEXT NOT NULL"},
			{"hour", "INTEGER NOT NULL"},
			{"quarter", "INTEGER NOT NULL"},
			{"week_number", "INTEGER NOT NULL"},
			{"is_weekend", "BOOLEAN NOT NULL"},
		},
		rows: rows,
	}
}

func userTable(dims []warehouse.UserDim) *tableDef {
	rows := make([][]any, len(dims))
	for i, d := range dims {
		rows[i] = []any{d.UserID, d.User, d.TotalNotes, d.AvgSentiment}
	}
	return &tableDef{
		name: warehouse.TableUser,
		columns: []column{
			{"user_id", "BIGINT PRIMARY KEY"},
			{"user", "TEXT NOT NULL"},
			{"total_notes", "BIGINT NOT NULL"},
			{"avg_sentiment", "DOUBLE PRECISION"},
		},
		rows: rows,
	}
}

func sentimentTable(dims []warehouse.SentimentDim) *tableDef {
	rows := make([][]any, len(dims))
	for i, d := range dims {
		rows[i] = []any{d.SentimentID, d.Label, d.Category}
	}
	return &tableDef{
		name: warehouse.TableSentiment,
		columns: []column{
			{"sentiment_id", "BIGINT PRIMARY KEY"},
			{"sentiment_label", "TEXT NOT NULL"},
			{"sentiment_category", "TEXT NOT NULL"},
		},
		rows: rows,
	}
}

func keywordTable(dims []warehouse.KeywordDim) *tableDef {
	rows := make([][]any, len(dims))
	for i, d := range dims {
		rows[i] = []any{d.KeywordID, d.Keyword}
	}
	return &tableDef{
		name: warehouse.TableKeyword,
		columns: []column{
			{"keyword_id", "BIGINT PRIMARY KEY"},
			{"keyword", "TEXT NOT NULL"},
		},
		rows:     rows,
		optional: true,
	}
}

func factTable(facts []warehouse.FactNote) *tableDef {
	rows := make([][]any, len(facts))
	for i, f := range facts {
		rows[i] = []any{
			f.NoteID, f.TimeID, f.UserID, f.SentimentID,
			f.Score, f.Comparative, f.RawScore,
			f.CreatedAt, f.UpdatedAt, f.NoteCount, f.WordCount,
		}
	}
	return &tableDef{
		name: warehouse.TableFact,
		columns: []column{
			{"note_id", "TEXT"},
			{"time_id", "BIGINT"},
			{"user_id", "BIGINT"},
			{"sentiment_id", "BIGINT"},
			{"score", "DOUBLE PRECISION"},
			{"comparative", "DOUBLE PRECISION"},
			{"raw_score", "DOUBLE PRECISION"},
			{"created_at", "TIMESTAMPTZ NOT NULL"},
			{"updated_at", "TIMESTAMPTZ"},
			{"note_count", "BIGINT NOT NULL"},
			{"word_count", "BIGINT NOT NULL"},
		},
		indexed: []string{"time_id", "user_id", "sentiment_id"},
		rows:    rows,
	}
}
