package docintel

import (
	"context"
	"time"
)

// SearchBuilder is a fluent builder for queries.
type SearchBuilder struct {
	client *Client
	q      Query
}

// Find starts a query for text.
func (c *Client) Find(text string) *SearchBuilder {
	return &SearchBuilder{client: c, q: Query{Text: text}}
}

// Mode sets the search mode (hybrid, semantic_only, literal).
func (b *SearchBuilder) Mode(m SearchMode) *SearchBuilder {
	b.q.Mode = m
	return b
}

// Literal restricts the query to exact substring matching.
func (b *SearchBuilder) Literal() *SearchBuilder {
	return b.Mode(ModeLiteral)
}

// Between keeps records created in [since, until). Zero bounds stay open.
func (b *SearchBuilder) Between(since, until time.Time) *SearchBuilder {
	b.q.Since = since
	b.q.Until = until
	return b
}

// From adds source type filters.
func (b *SearchBuilder) From(sourceTypes ...string) *SearchBuilder {
	b.q.SourceTypes = append(b.q.SourceTypes, sourceTypes...)
	return b
}

// Tagged adds tag filters. Records need any of the tags unless AllTags is set.
func (b *SearchBuilder) Tagged(tags ...string) *SearchBuilder {
	b.q.Tags = append(b.q.Tags, tags...)
	return b
}

// AllTags requires every tag from Tagged.
func (b *SearchBuilder) AllTags() *SearchBuilder {
	b.q.TagLogic = TagsAll
	return b
}

// Limit sets the maximum number of results.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.q.Limit = n
	return b
}

// Explain includes match reasons in the hits.
func (b *SearchBuilder) Explain() *SearchBuilder {
	b.q.Why = true
	return b
}

// Query returns the query built so far.
func (b *SearchBuilder) Query() Query { return b.q }

// Do executes the search.
func (b *SearchBuilder) Do(ctx context.Context) ([]Hit, error) {
	return b.client.Search(ctx, b.q)
}
