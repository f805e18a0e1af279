// Package scoring combines per-category scores into the overall score.
package scoring

import (
	"math"

	"github.com/repograde/repograde/pkg/models"
)

// Category weights for the overall score. These are fixed: no caller may
// request a different weighting.
const (
	SecurityWeight      = 0.40
	CodeQualityWeight   = 0.35
	BestPracticesWeight = 0.25
)

// Combine computes the weighted overall score from a breakdown, rounding
// half up to the nearest integer. The result is clamped to [0,100] since the
// inputs already are.
func Combine(b models.ScoreBreakdown) int {
	weighted := SecurityWeight*float64(b.Security.Score) +
		CodeQualityWeight*float64(b.CodeQuality.Score) +
		BestPracticesWeight*float64(b.BestPractices.Score)
	return int(math.Floor(weighted + 0.5))
}
