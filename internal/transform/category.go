package transform

import "github.com/pgEdge/pgedge-notes-etl/internal/warehouse"

// neutralScore stands in for a label whose mean score is unknown.
const neutralScore = 0.5

// Categorize buckets a label's mean sentiment score. Each bracket is
// closed on its lower bound, so exactly 0.55 is positive.
func Categorize(mean *float64) string {
	score := neutralScore
	if mean != nil {
		score = *mean
	}

	switch {
	case score >= 0.70:
		return warehouse.CategoryStrongPositive
	case score >= 0.55:
		return warehouse.CategoryPositive
	case score >= 0.45:
		return warehouse.CategoryNeutral
	case score >= 0.30:
		return warehouse.CategoryNegative
	default:
		return warehouse.CategoryStrongNegative
	}
}
