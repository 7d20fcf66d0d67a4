package load

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-notes-etl/internal/db"
	"github.com/pgEdge/pgedge-notes-etl/internal/logging"
	"github.com/pgEdge/pgedge-notes-etl/internal/warehouse"
)

// dropViewSQL removes the reporting view if present.
const dropViewSQL = `DROP VIEW IF EXISTS vw_notes_analysis`

// createViewSQL joins the fact table with the time, user and sentiment
// dimensions for reporting tools.
const createViewSQL = `
CREATE VIEW vw_notes_analysis AS
SELECT
    fn.note_id,
    fn.score,
    fn.comparative,
    fn.raw_score,
    fn.word_count,
    fn.created_at,
    fn.updated_at,
    dt.year,
    dt.month,
    dt.day_of_week,
    dt.is_weekend,
    du."user",
    du.total_notes AS user_total_notes,
    du.avg_sentiment AS user_avg_sentiment,
    ds.sentiment_label,
    ds.sentiment_category
FROM fact_notes fn
LEFT JOIN dim_time dt ON fn.time_id = dt.time_id
LEFT JOIN dim_user du ON fn.user_id = du.user_id
LEFT JOIN dim_sentiment ds ON fn.sentiment_id = ds.sentiment_id`

// ViewColumns lists the columns exposed by the reporting view, in order.
var ViewColumns = []string{
	"note_id", "score", "comparative", "raw_score", "word_count",
	"created_at", "updated_at", "year", "month", "day_of_week", "is_weekend",
	"user", "user_total_notes", "user_avg_sentiment",
	"sentiment_label", "sentiment_category",
}

// recreateView drops and recreates the reporting view; both statements
// commit together.
func recreateView(ctx context.Context, database db.DB) error {
	logging.Info().Str("view", warehouse.ViewAnalysis).Msg("Creating reporting view")

	tx, err := database.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin view transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, dropViewSQL); err != nil {
		return fmt.Errorf("failed to drop view %s: %w", warehouse.ViewAnalysis, err)
	}
	if _, err := tx.Exec(ctx, createViewSQL); err != nil {
		return fmt.Errorf("failed to create view %s: %w", warehouse.ViewAnalysis, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit view %s: %w", warehouse.ViewAnalysis, err)
	}

	return nil
}
