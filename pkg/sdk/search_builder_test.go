package docintel

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
	"github.com/kailas-cloud/docintel/internal/domain/search/mode"
)

func TestSearchBuilder(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := since.AddDate(0, 1, 0)

	ms := &mockSearch{}
	c := newTestClient(ms, nil, nil)
	b := c.Find("invoice").
		Literal().
		Between(since, until).
		From("pdf", "email").
		Tagged("finance", "q1").
		AllTags().
		Limit(5).
		Explain()

	q := b.Query()
	if q.Mode != ModeLiteral || q.Limit != 5 || !q.Why || q.TagLogic != TagsAll {
		t.Errorf("unexpected query: %+v", q)
	}
	if len(q.SourceTypes) != 2 || len(q.Tags) != 2 {
		t.Errorf("filters not accumulated: %+v", q)
	}

	if _, err := b.Do(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.got.Mode() != mode.Literal || ms.got.Limit() != 5 {
		t.Errorf("unexpected request: mode=%q limit=%d", ms.got.Mode(), ms.got.Limit())
	}
	f := ms.got.Filters()
	if !f.Since().Equal(since) || !f.Until().Equal(until) || f.TagLogic() != filter.And {
		t.Errorf("unexpected filters: %+v", f)
	}
}
