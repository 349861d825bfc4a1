package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
)

func mustFilters(t *testing.T, since, until time.Time, sts []content.SourceType, tags []string, logic filter.TagLogic) filter.Filters {
	t.Helper()
	f, err := filter.New(since, until, sts, tags, logic)
	if err != nil {
		t.Fatalf("filter.New: %v", err)
	}
	return f
}

func TestContentQuery_NoFilters(t *testing.T) {
	s := NewContentStore(&DB{}, "")
	query, params := s.buildQuery(filter.None(), nil)

	want := `SELECT ` + recordColumns + ` FROM "content_records" ORDER BY id`
	if query != want {
		t.Errorf("query =\n%s\nwant\n%s", query, want)
	}
	if len(params) != 0 {
		t.Errorf("expected no params, got %v", params)
	}
}

func TestContentQuery_FiltersAndTerms(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	f := mustFilters(t, since, until, []content.SourceType{content.PDF}, []string{"lease"}, filter.Or)

	s := NewContentStore(&DB{}, "records")
	query, params := s.buildQuery(f, []string{"50%_off", "rent"})

	for _, frag := range []string{
		`FROM "records" WHERE`,
		"created_at >= $1",
		"created_at < $2",
		"lower(source_type) = ANY($3)",
		"EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE lower(t) = ANY($4))",
		"(title ILIKE ANY($5) OR body ILIKE ANY($5))",
	} {
		if !strings.Contains(query, frag) {
			t.Errorf("query missing %q:\n%s", frag, query)
		}
	}
	if len(params) != 5 {
		t.Fatalf("expected 5 params, got %d", len(params))
	}
	patterns, ok := params[4].([]string)
	if !ok || patterns[0] != `%50\%\_off%` || patterns[1] != "%rent%" {
		t.Errorf("unexpected patterns: %#v", params[4])
	}
}

func TestFilterConds_TagsAnd(t *testing.T) {
	f := mustFilters(t, time.Time{}, time.Time{}, nil, []string{"a", "b"}, filter.And)
	var a args
	conds := filterConds(f, "r", &a)
	if len(conds) != 1 {
		t.Fatalf("expected one condition, got %v", conds)
	}
	if !strings.Contains(conds[0], "unnest(r.tags)") || !strings.HasSuffix(conds[0], "= 2") {
		t.Errorf("unexpected AND condition: %s", conds[0])
	}
}

func TestFilterConds_OtherSkipsSourceTypePushdown(t *testing.T) {
	f := mustFilters(t, time.Time{}, time.Time{}, []content.SourceType{content.PDF, content.Other}, nil, filter.Or)
	var a args
	if conds := filterConds(f, "", &a); len(conds) != 0 {
		t.Errorf("expected no pushdown, got %v", conds)
	}
}

func TestVectorQuery(t *testing.T) {
	v := NewVectorIndex(&DB{}, "", "", 3)
	f := mustFilters(t, time.Time{}, time.Time{}, []content.SourceType{content.Email}, nil, filter.Or)
	query, params := v.buildQuery(pgvector.NewVector([]float32{1, 2, 3}), 20, f)

	for _, frag := range []string{
		`e.embedding <=> $1 AS distance`,
		`FROM "content_embeddings" e JOIN "content_records" r ON r.id = e.content_id`,
		"WHERE lower(r.source_type) = ANY($2)",
		"ORDER BY distance ASC, e.content_id ASC LIMIT 20",
	} {
		if !strings.Contains(query, frag) {
			t.Errorf("query missing %q:\n%s", frag, query)
		}
	}
	if len(params) != 2 {
		t.Errorf("expected 2 params, got %d", len(params))
	}
}

func TestTableNamesAreQuoted(t *testing.T) {
	s := NewContentStore(&DB{}, `x"; DROP TABLE y; --`)
	if !strings.HasPrefix(s.table, `"x""; DROP`) {
		t.Errorf("table name not sanitized: %s", s.table)
	}
}
