//-------------------------------------------------------------------------
//
// pgEdge Notes ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse defines the star schema rows produced by the transform
// stage and written by the loader.
package warehouse

import "time"

// Table and view names in the warehouse.
const (
	TableTime      = "dim_time"
	TableUser      = "dim_user"
	TableSentiment = "dim_sentiment"
	TableKeyword   = "dim_keyword"
	TableFact      = "fact_notes"
	ViewAnalysis   = "vw_notes_analysis"
)

// Sentiment categories derived from a label's mean score.
const (
	CategoryStrongPositive = "strong_positive"
	CategoryPositive       = "positive"
	CategoryNeutral        = "neutral"
	CategoryNegative       = "negative"
	CategoryStrongNegative = "strong_negative"
)

// TimeDim is one distinct creation timestamp with its calendar attributes.
type TimeDim struct {
	TimeID     int64
	CreatedAt  time.Time
	Date       time.Time
	Year       int
	Month      int
	Day        int
	DayOfWeek  string
	Hour       int
	Quarter    int
	WeekNumber int
	IsWeekend  bool
}

// UserDim is one distinct user with note aggregates.
type UserDim struct {
	UserID     int64
	User       string
	TotalNotes int64
	// AvgSentiment is nil when the user has no scored notes.
	AvgSentiment *float64
}

// SentimentDim is one distinct sentiment label.
type SentimentDim struct {
	SentimentID int64
	Label       string
	Category    string
}

// KeywordDim is one distinct keyword.
type KeywordDim struct {
	KeywordID int64
	Keyword   string
}

// FactNote is one note with foreign keys into the dimensions. A nil key
// means the join found no matching dimension row.
type FactNote struct {
	NoteID      string
	TimeID      *int64
	UserID      *int64
	SentimentID *int64
	Score       *float64
	Comparative *float64
	RawScore    *float64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	NoteCount   int64
	WordCount   int64
}

// Schema is the full star schema for one run.
type Schema struct {
	Times      []TimeDim
	Users      []UserDim
	Sentiments []SentimentDim
	Keywords   []KeywordDim
	Facts      []FactNote
}

// RowCounts returns the number of rows per table name.
func (s *Schema) RowCounts() map[string]int {
	return map[string]int{
		TableTime:      len(s.Times),
		TableUser:      len(s.Users),
		TableSentiment: len(s.Sentiments),
		TableKeyword:   len(s.Keywords),
		TableFact:      len(s.Facts),
	}
}
