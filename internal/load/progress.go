package load

import (
	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-notes-etl/internal/logging"
)

// progressReporter logs copy progress for one table.
type progressReporter struct {
	log              zerolog.Logger
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

func newProgressReporter(tableName string, totalRows int64, interval int64) *progressReporter {
	if interval < 1 {
		interval = 1
	}
	return &progressReporter{
		log:              logging.With().Str("table", tableName).Logger(),
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// update records copied rows and logs when an interval boundary is crossed.
func (p *progressReporter) update(rowsCopied int64) {
	oldRow := p.currentRow
	p.currentRow += rowsCopied

	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		p.log.Debug().
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Copying rows")
	}
}

func (p *progressReporter) done() {
	p.log.Info().
		Int64("rows", p.currentRow).
		Msg("Table loaded")
}
