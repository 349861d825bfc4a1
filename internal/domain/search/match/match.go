package match

import "github.com/kailas-cloud/docintel/internal/domain/content"

// Lane is one independent retrieval method.
type Lane string

// Lane constants. Declaration order is the fixed reason order in fused output.
const (
	Semantic Lane = "semantic"
	Keyword  Lane = "keyword"
)

// Scored is one lane's verdict on one record. Score is already normalized
// to [0,1] by the producing lane, so fusion never inspects lane-specific shape.
type Scored struct {
	lane    Lane
	raw     float64
	score   float64
	reasons []string
	record  content.Record
}

// New creates a scored match. The normalized score is clamped to [0,1].
func New(lane Lane, record content.Record, raw, normalized float64, reasons []string) Scored {
	return Scored{
		lane:    lane,
		raw:     raw,
		score:   clamp01(normalized),
		reasons: reasons,
		record:  record,
	}
}

// Lane returns the producing lane.
func (s Scored) Lane() Lane { return s.lane }

// ContentID returns the matched record's id.
func (s Scored) ContentID() string { return s.record.ID() }

// Raw returns the lane-specific raw score.
func (s Scored) Raw() float64 { return s.raw }

// Score returns the normalized score in [0,1].
func (s Scored) Score() float64 { return s.score }

// Reasons returns the ordered explanation strings.
func (s Scored) Reasons() []string { return s.reasons }

// Record returns the matched content record.
func (s Scored) Record() content.Record { return s.record }

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
