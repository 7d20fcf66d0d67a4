package load

import (
	"fmt"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-notes-etl/internal/logging"
	"github.com/pgEdge/pgedge-notes-etl/internal/warehouse"
)

// TableCount is the outcome for one warehouse table.
type TableCount struct {
	Table   string
	Rows    int
	Skipped bool
}

// Summary describes a completed load.
type Summary struct {
	Mode        string
	Tables      []TableCount
	View        string
	ViewCreated bool
	Duration    time.Duration
}

// Rows returns the row count recorded for table, or 0.
func (s *Summary) Rows(table string) int {
	for _, t := range s.Tables {
		if t.Table == table {
			return t.Rows
		}
	}
	return 0
}

// Log writes the summary through the structured logger.
func (s *Summary) Log() {
	event := logging.Info().
		Str("mode", s.Mode).
		Dur("duration", s.Duration).
		Bool("view_created", s.ViewCreated)
	for _, t := range s.Tables {
		event = event.Int(t.Table, t.Rows)
	}
	event.Msg("Load summary")
}

// String renders the human-readable summary block.
func (s *Summary) String() string {
	rule := strings.Repeat("=", 60)

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "NOTES ETL SUMMARY")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Notes total:          %d\n", s.Rows(warehouse.TableFact))
	fmt.Fprintf(&b, "Unique users:         %d\n", s.Rows(warehouse.TableUser))
	fmt.Fprintf(&b, "Time periods:         %d\n", s.Rows(warehouse.TableTime))
	fmt.Fprintf(&b, "Sentiment labels:     %d\n", s.Rows(warehouse.TableSentiment))
	fmt.Fprintf(&b, "Unique keywords:      %d\n", s.Rows(warehouse.TableKeyword))
	for _, t := range s.Tables {
		if t.Skipped {
			fmt.Fprintf(&b, "Skipped (empty):      %s\n", t.Table)
		}
	}
	if s.ViewCreated {
		fmt.Fprintf(&b, "View created:         %s\n", s.View)
	}
	fmt.Fprintln(&b, rule)
	return b.String()
}
