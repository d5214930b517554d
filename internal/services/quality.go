package services

import (
	"math"

	"github.com/cagebase/cagebase/internal/database"
)

// ComputeQuality derives the cached completeness score for a perspective
// record: the fraction of displayable fields that are populated. Linked
// records are floored at 0.5 since their core fields are authoritative.
func ComputeQuality(rec *database.PerspectiveRecord) float64 {
	populated := 0
	total := 10

	if rec.OpponentName != "" {
		populated++
	}
	if rec.EventName != "" {
		populated++
	}
	if rec.EventDate != nil {
		populated++
	}
	if rec.EventLocation != "" {
		populated++
	}
	if rec.Method != "" {
		populated++
	}
	if rec.EndingRound > 0 {
		populated++
	}
	if rec.EndingTime != "" {
		populated++
	}
	if rec.WeightClass != "" {
		populated++
	}
	if rec.Organization != "" {
		populated++
	}
	if rec.Result.Valid() {
		populated++
	}

	score := float64(populated) / float64(total)
	if rec.Linked() && score < 0.5 {
		score = 0.5
	}
	// Two decimal places, matching the column precision
	return math.Round(score*100) / 100
}
