package transform

import (
	"time"

	"github.com/pgEdge/pgedge-notes-etl/internal/warehouse"
)

// buildFacts left-joins every note onto the dimension keys. A note whose
// join value has no dimension row keeps a nil foreign key.
func buildFacts(
	notes []note,
	timeKeys *surrogateKeys[time.Time],
	userKeys *surrogateKeys[string],
	labelKeys *surrogateKeys[string],
) []warehouse.FactNote {
	facts := make([]warehouse.FactNote, 0, len(notes))

	for _, n := range notes {
		f := warehouse.FactNote{
			NoteID:      n.id,
			TimeID:      timeKeys.lookup(n.createdAt),
			UserID:      userKeys.lookup(n.user),
			SentimentID: labelKeys.lookup(n.label),
			Score:       n.score,
			Comparative: n.comparative,
			RawScore:    n.rawScore,
			CreatedAt:   n.createdAt,
			UpdatedAt:   n.updatedAt,
			NoteCount:   1,
		}
		if n.hasContent {
			f.WordCount = wordCount(n.content)
		}
		facts = append(facts, f)
	}

	return facts
}
