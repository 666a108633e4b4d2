package health

import "fmt"

// GradeBand assigns a grade and tier to every score at or above MinScore.
type GradeBand struct {
	MinScore int    `yaml:"min_score" json:"min_score"`
	Grade    string `yaml:"grade" json:"grade"`
	Tier     string `yaml:"tier" json:"tier"`
}

// GradeTable is an ordered list of bands, best first. A valid table has
// strictly descending thresholds ending at 0, so it partitions [0,100] and a
// higher score never lands in a lower-ranked band.
type GradeTable []GradeBand

// DefaultGradeTable returns the standard five-band table.
func DefaultGradeTable() GradeTable {
	return GradeTable{
		{MinScore: 90, Grade: "A", Tier: "Excellent"},
		{MinScore: 75, Grade: "B", Tier: "Healthy"},
		{MinScore: 60, Grade: "C", Tier: "Watch"},
		{MinScore: 40, Grade: "D", Tier: "At Risk"},
		{MinScore: 0, Grade: "F", Tier: "Critical"},
	}
}

// Validate checks that the table is monotonic and leaves no gaps.
func (t GradeTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("grade table is empty")
	}
	if t[0].MinScore > 100 {
		return fmt.Errorf("top band threshold %d exceeds 100", t[0].MinScore)
	}
	for i := 1; i < len(t); i++ {
		if t[i].MinScore >= t[i-1].MinScore {
			return fmt.Errorf("band %q threshold %d must be below %q threshold %d",
				t[i].Grade, t[i].MinScore, t[i-1].Grade, t[i-1].MinScore)
		}
	}
	if last := t[len(t)-1]; last.MinScore != 0 {
		return fmt.Errorf("bottom band %q must start at 0, got %d", last.Grade, last.MinScore)
	}
	for _, b := range t {
		if b.Grade == "" {
			return fmt.Errorf("band at %d has no grade", b.MinScore)
		}
	}
	return nil
}

// Band returns the band for a score and its rank (0 is best).
func (t GradeTable) Band(score int) (GradeBand, int) {
	score = clamp(score)
	for i, b := range t {
		if score >= b.MinScore {
			return b, i
		}
	}
	return t[len(t)-1], len(t) - 1
}
