package result

import (
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/match"
)

// Fused is one deduplicated, ranked hit of a query.
type Fused struct {
	score   float64
	lanes   []match.Lane
	reasons []string
	record  content.Record
}

// New creates a fused result. Lanes are expected in fixed order (semantic, keyword).
func New(record content.Record, score float64, lanes []match.Lane, reasons []string) Fused {
	return Fused{score: score, lanes: lanes, reasons: reasons, record: record}
}

// ContentID returns the record identifier.
func (f Fused) ContentID() string { return f.record.ID() }

// Score returns the final score in [0,1].
func (f Fused) Score() float64 { return f.score }

// Lanes returns the contributing lanes.
func (f Fused) Lanes() []match.Lane { return f.lanes }

// HasLane reports whether l contributed to this result.
func (f Fused) HasLane(l match.Lane) bool {
	for _, x := range f.lanes {
		if x == l {
			return true
		}
	}
	return false
}

// Reasons returns semantic reasons followed by keyword reasons.
func (f Fused) Reasons() []string { return f.reasons }

// Record returns the source record.
func (f Fused) Record() content.Record { return f.record }
