package mode

import "strings"

// Mode is the retrieval strategy for one query.
type Mode string

// Search mode constants.
const (
	// Hybrid runs the semantic and keyword lanes and fuses them.
	Hybrid Mode = "hybrid"
	// SemanticOnly runs the semantic lane alone.
	SemanticOnly Mode = "semantic_only"
	// Literal runs the keyword lane in exact-substring mode; the vector index is never touched.
	Literal Mode = "literal"
)

// Parse normalizes s; empty input yields Hybrid. Returns false for unknown modes.
func Parse(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return Hybrid, true
	}
	return m, m.IsValid()
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == SemanticOnly || m == Literal
}

// NeedsVector reports whether the mode depends on the vector index.
func (m Mode) NeedsVector() bool {
	return m == Hybrid || m == SemanticOnly
}
