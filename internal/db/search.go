package db

// TagClause matches documents whose tag field holds any of Values.
// Separate clauses combine with AND.
type TagClause struct {
	Field  string
	Values []string
}

// RangeClause bounds a numeric field. Nil bounds are open.
// Min is inclusive, Max is exclusive.
type RangeClause struct {
	Field string
	Min   *float64
	Max   *float64
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Vector       []float32
	K            int
	Tags         []TagClause
	Ranges       []RangeClause
	ReturnFields []string
}

// HasFilter reports whether the query carries any pre-filter clause.
func (q *KNNQuery) HasFilter() bool {
	return len(q.Tags) > 0 || len(q.Ranges) > 0
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Score is cosine similarity in [0,1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
