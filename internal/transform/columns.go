package transform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from the export.
var ErrMissingColumn = errors.New("required column missing")

// Normalized names of the columns read from the export.
const (
	ColNoteID      = "_id"
	ColCreatedAt   = "createdat"
	ColUpdatedAt   = "updatedat"
	ColUser        = "user"
	ColContent     = "content"
	ColLabel       = "sentiment_label"
	ColScore       = "sentiment_score"
	ColComparative = "sentiment_comparative"
	ColRawScore    = "sentiment_rawscore"

	// keywordMarker selects keyword-bearing columns by substring.
	keywordMarker = "keywords"
)

var requiredColumns = []string{
	ColNoteID,
	ColCreatedAt,
	ColUpdatedAt,
	ColUser,
	ColContent,
	ColLabel,
	ColScore,
	ColComparative,
	ColRawScore,
}

// NormalizeColumn replaces dots with underscores and lower-cases the name,
// so "sentiment.rawScore" becomes "sentiment_rawscore".
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, ".", "_"))
}

// NormalizeColumns returns the normalized form of every name.
func NormalizeColumns(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeColumn(n)
	}
	return out
}

// columnIndex holds the positions of the columns the transform reads.
type columnIndex struct {
	noteID      int
	createdAt   int
	updatedAt   int
	user        int
	content     int
	label       int
	score       int
	comparative int
	rawScore    int
	keywords    []int
}

// resolveColumns locates every required column among normalized names.
// When names repeat after normalization the first occurrence wins.
func resolveColumns(normalized []string) (columnIndex, error) {
	pos := make(map[string]int, len(normalized))
	var keywords []int
	for i, n := range normalized {
		if _, seen := pos[n]; !seen {
			pos[n] = i
		}
		if strings.Contains(n, keywordMarker) {
			keywords = append(keywords, i)
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return columnIndex{
		noteID:      pos[ColNoteID],
		createdAt:   pos[ColCreatedAt],
		updatedAt:   pos[ColUpdatedAt],
		user:        pos[ColUser],
		content:     pos[ColContent],
		label:       pos[ColLabel],
		score:       pos[ColScore],
		comparative: pos[ColComparative],
		rawScore:    pos[ColRawScore],
		keywords:    keywords,
	}, nil
}
