package transform

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// parseTimestamp parses s leniently; ok is false for anything unparseable.
// Values without an explicit offset are read as UTC.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// parseFloat returns nil for unparseable or NaN values.
func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}

// wordCount splits on whitespace runs.
func wordCount(content string) int64 {
	return int64(len(strings.Fields(content)))
}

// surrogateKeys assigns dense ids starting at 1 in first-seen order.
type surrogateKeys[K comparable] struct {
	ids map[K]int64
}

func newSurrogateKeys[K comparable]() *surrogateKeys[K] {
	return &surrogateKeys[K]{ids: make(map[K]int64)}
}

// add returns the id for k and whether k was new.
func (s *surrogateKeys[K]) add(k K) (int64, bool) {
	if id, ok := s.ids[k]; ok {
		return id, false
	}
	id := int64(len(s.ids) + 1)
	s.ids[k] = id
	return id, true
}

// lookup is the left join: nil when k has no dimension row.
func (s *surrogateKeys[K]) lookup(k K) *int64 {
	id, ok := s.ids[k]
	if !ok {
		return nil
	}
	return &id
}
