package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
)

var (
	jan = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mar = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
)

func record(t *testing.T, st content.SourceType, created time.Time, tags ...string) content.Record {
	t.Helper()
	r, err := content.NewRecord("id", st, "title", "body", created, tags)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	return r
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		since time.Time
		until time.Time
		st    []content.SourceType
		tags  []string
		logic TagLogic
	}{
		{"since equals until", feb, feb, nil, nil, Or},
		{"since after until", mar, feb, nil, nil, Or},
		{"unknown source type", time.Time{}, time.Time{}, []content.SourceType{"fax"}, nil, Or},
		{"blank tag", time.Time{}, time.Time{}, nil, []string{"  "}, Or},
		{"unknown logic", time.Time{}, time.Time{}, nil, []string{"a"}, "xor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.since, tt.until, tt.st, tt.tags, tt.logic)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestNew_TooManyTags(t *testing.T) {
	tags := make([]string, MaxTags+1)
	for i := range tags {
		tags[i] = string(rune('a' + i%26))
	}
	if _, err := New(time.Time{}, time.Time{}, nil, tags, Or); err == nil {
		t.Error("expected error for too many tags")
	}
}

func TestNew_Normalizes(t *testing.T) {
	f, err := New(time.Time{}, time.Time{},
		[]content.SourceType{content.PDF, content.PDF}, []string{"Legal", "legal "}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.SourceTypes()) != 1 {
		t.Errorf("source types not deduped: %v", f.SourceTypes())
	}
	if len(f.Tags()) != 1 || f.Tags()[0] != "legal" {
		t.Errorf("tags = %v, want [legal]", f.Tags())
	}
	if f.TagLogic() != Or {
		t.Errorf("default logic = %q, want or", f.TagLogic())
	}
	if f.IsEmpty() {
		t.Error("filters with tags must not be empty")
	}
}

func TestParseTagLogic(t *testing.T) {
	for in, want := range map[string]TagLogic{"": Or, "OR": Or, "and": And} {
		got, err := ParseTagLogic(in)
		if err != nil || got != want {
			t.Errorf("ParseTagLogic(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseTagLogic("not"); err == nil {
		t.Error("expected error")
	}
}

func TestMatches_DateRange(t *testing.T) {
	f, err := New(jan, mar, nil, nil, Or)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Matches(record(t, content.Email, jan)) {
		t.Error("since is inclusive")
	}
	if !f.Matches(record(t, content.Email, feb)) {
		t.Error("inside range should match")
	}
	if f.Matches(record(t, content.Email, mar)) {
		t.Error("until is exclusive")
	}
	if f.Matches(record(t, content.Email, jan.Add(-time.Second))) {
		t.Error("before since should not match")
	}
}

func TestMatches_SourceTypes(t *testing.T) {
	f, _ := New(time.Time{}, time.Time{}, []content.SourceType{content.PDF, content.Upload}, nil, Or)
	if !f.Matches(record(t, content.PDF, jan)) {
		t.Error("pdf should match")
	}
	if f.Matches(record(t, content.Email, jan)) {
		t.Error("email should not match")
	}
}

func TestMatches_TagLogic(t *testing.T) {
	or, _ := New(time.Time{}, time.Time{}, nil, []string{"lease", "tax"}, Or)
	and, _ := New(time.Time{}, time.Time{}, nil, []string{"lease", "tax"}, And)

	one := record(t, content.Email, jan, "Lease")
	both := record(t, content.Email, jan, "lease", "TAX")
	none := record(t, content.Email, jan, "other")

	if !or.Matches(one) || !or.Matches(both) || or.Matches(none) {
		t.Error("or logic mismatch")
	}
	if and.Matches(one) || !and.Matches(both) || and.Matches(none) {
		t.Error("and logic mismatch")
	}
}

func TestNone_MatchesEverything(t *testing.T) {
	f := None()
	if !f.IsEmpty() {
		t.Error("None() must be empty")
	}
	if !f.Matches(record(t, content.Other, time.Time{})) {
		t.Error("None() must match any record")
	}
}
