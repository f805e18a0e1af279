package scoring

import (
	"math"
	"testing"

	"github.com/repograde/repograde/pkg/models"
	"github.com/stretchr/testify/assert"
)

func breakdown(sec, qual, prac int) models.ScoreBreakdown {
	return models.ScoreBreakdown{
		Security:      models.CategoryResult{Score: sec},
		CodeQuality:   models.CategoryResult{Score: qual},
		BestPractices: models.CategoryResult{Score: prac},
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name            string
		sec, qual, prac int
		want            int
	}{
		{"all perfect", 100, 100, 100, 100},
		{"all zero", 0, 0, 0, 0},
		{"even split", 50, 50, 50, 50},
		{"security dominates", 100, 0, 0, 40},
		{"quality only", 0, 100, 0, 35},
		{"practices only", 0, 0, 100, 25},
		{"rounds down", 70, 70, 71, 70},      // 70.25 -> 70
		{"rounds half up", 100, 0, 50, 53},   // 52.5 -> 53
		{"rounds up", 99, 100, 100, 100},     // 99.6 -> 100
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Combine(breakdown(tt.sec, tt.qual, tt.prac)))
		})
	}
}

func TestCombine_WeightInvariant(t *testing.T) {
	for sec := 0; sec <= 100; sec += 7 {
		for qual := 0; qual <= 100; qual += 11 {
			for prac := 0; prac <= 100; prac += 13 {
				got := Combine(breakdown(sec, qual, prac))
				want := int(math.Floor(0.40*float64(sec) + 0.35*float64(qual) + 0.25*float64(prac) + 0.5))
				assert.Equal(t, want, got)
				assert.GreaterOrEqual(t, got, 0)
				assert.LessOrEqual(t, got, 100)
			}
		}
	}
}
