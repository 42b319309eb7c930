package reporting

import (
	"fmt"
	"math"
	"sort"

	"evidly-workers/internal/models"
)

// Grader maps a numeric score onto a jurisdiction's grade scale.
// Implementations must be total over [0,100] and monotonic.
type Grader interface {
	Grade(score float64) models.Grade
}

// Band is one step of a breakpoint scale: every score >= MinScore, and below
// the next higher band, receives Label and Color.
type Band struct {
	MinScore float64 `json:"minScore"`
	Label    string  `json:"label"`
	Color    string  `json:"color"`
}

// BandGrader grades by looking up the highest band whose MinScore the score reaches.
type BandGrader struct {
	bands []Band // descending by MinScore
}

// NewBandGrader validates the bands and returns a grader over them. Bands may
// be given in any order but MinScores must be distinct and the lowest must be <= 0
// so every score in [0,100] lands in a band.
func NewBandGrader(bands []Band) (*BandGrader, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("grading scale has no bands")
	}

	sorted := append([]Band(nil), bands...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinScore > sorted[j].MinScore })

	for i, b := range sorted {
		if b.Label == "" {
			return nil, fmt.Errorf("band with minScore %v has no label", b.MinScore)
		}
		if math.IsNaN(b.MinScore) || math.IsInf(b.MinScore, 0) {
			return nil, fmt.Errorf("band %q has a non-finite minScore", b.Label)
		}
		if i > 0 && sorted[i-1].MinScore == b.MinScore {
			return nil, fmt.Errorf("bands %q and %q share minScore %v", sorted[i-1].Label, b.Label, b.MinScore)
		}
	}
	if lowest := sorted[len(sorted)-1]; lowest.MinScore > 0 {
		return nil, fmt.Errorf("lowest band %q starts at %v; scores below it would be ungraded", lowest.Label, lowest.MinScore)
	}

	return &BandGrader{bands: sorted}, nil
}

// MustBandGrader is NewBandGrader for static tables.
func MustBandGrader(bands ...Band) *BandGrader {
	g, err := NewBandGrader(bands)
	if err != nil {
		panic(err)
	}
	return g
}

// Grade never panics: NaN is graded as 0 and other inputs are clamped to [0,100].
func (g *BandGrader) Grade(score float64) models.Grade {
	score = ClampScore(score)
	for i, b := range g.bands {
		if score >= b.MinScore {
			return models.Grade{Label: b.Label, Color: b.Color, Tier: len(g.bands) - 1 - i}
		}
	}
	last := g.bands[len(g.bands)-1]
	return models.Grade{Label: last.Label, Color: last.Color, Tier: 0}
}

// Bands returns the scale from best to worst.
func (g *BandGrader) Bands() []Band {
	return append([]Band(nil), g.bands...)
}

// ClampScore bounds a score to [0,100], mapping NaN to 0.
func ClampScore(score float64) float64 {
	switch {
	case math.IsNaN(score):
		return 0
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

// CheckMonotonic samples [0,100] at step and fails on the first score whose
// grade tier is lower than the tier of a smaller score.
func CheckMonotonic(g Grader, step float64) error {
	if step <= 0 {
		step = 1
	}
	prev := g.Grade(0)
	for s := step; s <= 100+step/2; s += step {
		score := math.Min(s, 100)
		cur := g.Grade(score)
		if cur.Tier < prev.Tier {
			return fmt.Errorf("grade drops from %q to %q at score %.2f", prev.Label, cur.Label, score)
		}
		prev = cur
	}
	return nil
}
