package transform

import (
	"time"

	"github.com/pgEdge/pgedge-notes-etl/internal/extract"
	"github.com/pgEdge/pgedge-notes-etl/internal/warehouse"
)

// buildTimes creates one row per distinct creation instant.
func buildTimes(notes []note, keys *surrogateKeys[time.Time], loc *time.Location) []warehouse.TimeDim {
	var dims []warehouse.TimeDim
	for _, n := range notes {
		id, isNew := keys.add(n.createdAt)
		if !isNew {
			continue
		}

		local := n.createdAt.In(loc)
		_, week := local.ISOWeek()
		weekday := local.Weekday()

		dims = append(dims, warehouse.TimeDim{
			TimeID:     id,
			CreatedAt:  n.createdAt,
			Date:       time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Year:       local.Year(),
			Month:      int(local.Month()),
			Day:        local.Day(),
			DayOfWeek:  weekday.String(),
			Hour:       local.Hour(),
			Quarter:    (int(local.Month())-1)/3 + 1,
			WeekNumber: week,
			IsWeekend:  weekday == time.Saturday || weekday == time.Sunday,
		})
	}
	return dims
}

// mean accumulates non-null values.
type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.count++
}

// value is nil when nothing was added.
func (m *mean) value() *float64 {
	if m.count == 0 {
		return nil
	}
	v := m.sum / float64(m.count)
	return &v
}

// buildUsers creates one row per distinct user with the count and mean
// of the user's non-null scores.
func buildUsers(notes []note, keys *surrogateKeys[string]) []warehouse.UserDim {
	var dims []warehouse.UserDim
	scores := make(map[string]*mean)

	for _, n := range notes {
		if id, isNew := keys.add(n.user); isNew {
			dims = append(dims, warehouse.UserDim{UserID: id, User: n.user})
			scores[n.user] = &mean{}
		}
		scores[n.user].add(n.score)
	}

	for i := range dims {
		u := &dims[i]
		u.TotalNotes = int64(scores[u.User].count)
		u.AvgSentiment = scores[u.User].value()
	}
	return dims
}

// buildSentiments creates one row per distinct label, categorized by the
// label's mean score across the whole cleaned dataset. Missing labels
// share a single row with an empty label; its scores are not averaged,
// so it is always neutral.
func buildSentiments(notes []note, keys *surrogateKeys[string]) []warehouse.SentimentDim {
	var dims []warehouse.SentimentDim
	scores := make(map[string]*mean)

	for _, n := range notes {
		if id, isNew := keys.add(n.label); isNew {
			dims = append(dims, warehouse.SentimentDim{SentimentID: id, Label: n.label})
			scores[n.label] = &mean{}
		}
		if n.hasLabel {
			scores[n.label].add(n.score)
		}
	}

	for i := range dims {
		dims[i].Category = Categorize(scores[dims[i].Label].value())
	}
	return dims
}

// buildKeywords flattens every keyword column, column by column, keeping
// the first appearance of each non-null value.
func buildKeywords(raw *extract.Table, notes []note, columns []int) []warehouse.KeywordDim {
	var dims []warehouse.KeywordDim
	keys := newSurrogateKeys[string]()

	for _, col := range columns {
		for _, n := range notes {
			kw, ok := raw.Value(n.row, col)
			if !ok {
				continue
			}
			if id, isNew := keys.add(kw); isNew {
				dims = append(dims, warehouse.KeywordDim{KeywordID: id, Keyword: kw})
			}
		}
	}
	return dims
}
