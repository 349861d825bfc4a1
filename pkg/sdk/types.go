package docintel

import "time"

// SearchMode controls which lanes run.
type SearchMode string

// Search mode constants.
const (
	ModeHybrid   SearchMode = "hybrid"
	ModeSemantic SearchMode = "semantic_only"
	ModeLiteral  SearchMode = "literal"
)

// TagLogic combines multiple tag filters.
type TagLogic string

// Tag logic constants.
const (
	TagsAny TagLogic = "or"
	TagsAll TagLogic = "and"
)

// Query is one search. Zero values mean "not set"; Limit defaults to 10.
type Query struct {
	Text        string
	Mode        SearchMode
	Limit       int
	Since       time.Time // inclusive
	Until       time.Time // exclusive
	SourceTypes []string
	Tags        []string
	TagLogic    TagLogic
	Why         bool
}

// Hit is one ranked result.
type Hit struct {
	ID         string
	SourceType string
	Title      string
	Body       string
	CreatedAt  time.Time
	Tags       []string
	Score      float64
	Lanes      []string
	Reasons    []string // set only when Query.Why is true
}
