package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
)

// MaxTags is the maximum number of tag conditions per query.
const MaxTags = 32

// TagLogic controls how multiple tags combine.
type TagLogic string

// Tag logic constants.
const (
	// Or matches records carrying at least one of the tags.
	Or TagLogic = "or"
	// And matches records carrying every tag.
	And TagLogic = "and"
)

// ParseTagLogic normalizes s; empty input yields Or.
func ParseTagLogic(s string) (TagLogic, error) {
	switch l := TagLogic(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return Or, nil
	case Or, And:
		return l, nil
	default:
		return "", fmt.Errorf("unknown tag logic %q (want and|or): %w", s, domain.ErrValidation)
	}
}

// Filters is the hard pre-filter applied by both lanes.
// Since is inclusive, until is exclusive; zero times leave the bound open.
type Filters struct {
	since       time.Time
	until       time.Time
	sourceTypes []content.SourceType
	tags        []string
	tagLogic    TagLogic
}

// New validates and creates Filters. Every rejection wraps domain.ErrValidation.
func New(since, until time.Time, sourceTypes []content.SourceType, tags []string, logic TagLogic) (Filters, error) {
	if !since.IsZero() && !until.IsZero() && !since.Before(until) {
		return Filters{}, fmt.Errorf("since (%s) must be before until (%s): %w",
			since.Format(time.RFC3339), until.Format(time.RFC3339), domain.ErrValidation)
	}
	if logic == "" {
		logic = Or
	}
	if logic != Or && logic != And {
		return Filters{}, fmt.Errorf("unknown tag logic %q (want and|or): %w", logic, domain.ErrValidation)
	}
	if len(tags) > MaxTags {
		return Filters{}, fmt.Errorf("too many tags (max %d): %w", MaxTags, domain.ErrValidation)
	}

	f := Filters{tagLogic: logic}
	if !since.IsZero() {
		f.since = since.UTC()
	}
	if !until.IsZero() {
		f.until = until.UTC()
	}

	seenST := make(map[content.SourceType]struct{}, len(sourceTypes))
	for _, st := range sourceTypes {
		if !st.IsValid() {
			return Filters{}, fmt.Errorf("unknown source type %q: %w", st, domain.ErrValidation)
		}
		if _, ok := seenST[st]; ok {
			continue
		}
		seenST[st] = struct{}{}
		f.sourceTypes = append(f.sourceTypes, st)
	}

	seenTag := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		norm := strings.ToLower(strings.TrimSpace(t))
		if norm == "" {
			return Filters{}, fmt.Errorf("tag must not be blank: %w", domain.ErrValidation)
		}
		if _, ok := seenTag[norm]; ok {
			continue
		}
		seenTag[norm] = struct{}{}
		f.tags = append(f.tags, norm)
	}
	return f, nil
}

// None returns filters that match every record.
func None() Filters { return Filters{tagLogic: Or} }

// Since returns the inclusive lower bound (zero when open).
func (f Filters) Since() time.Time { return f.since }

// Until returns the exclusive upper bound (zero when open).
func (f Filters) Until() time.Time { return f.until }

// SourceTypes returns the allowed source types (empty means any).
func (f Filters) SourceTypes() []content.SourceType { return f.sourceTypes }

// Tags returns the normalized tag conditions.
func (f Filters) Tags() []string { return f.tags }

// TagLogic returns how tags combine.
func (f Filters) TagLogic() TagLogic {
	if f.tagLogic == "" {
		return Or
	}
	return f.tagLogic
}

// IsEmpty reports whether the filters accept every record.
func (f Filters) IsEmpty() bool {
	return f.since.IsZero() && f.until.IsZero() && len(f.sourceTypes) == 0 && len(f.tags) == 0
}

// Matches reports whether r passes every filter.
func (f Filters) Matches(r content.Record) bool {
	created := r.CreatedAt()
	if !f.since.IsZero() && created.Before(f.since) {
		return false
	}
	if !f.until.IsZero() && !created.Before(f.until) {
		return false
	}
	if len(f.sourceTypes) > 0 && !f.allowsSourceType(r.SourceType()) {
		return false
	}
	if len(f.tags) == 0 {
		return true
	}
	if f.TagLogic() == And {
		for _, t := range f.tags {
			if !r.HasTag(t) {
				return false
			}
		}
		return true
	}
	for _, t := range f.tags {
		if r.HasTag(t) {
			return true
		}
	}
	return false
}

func (f Filters) allowsSourceType(st content.SourceType) bool {
	for _, s := range f.sourceTypes {
		if s == st {
			return true
		}
	}
	return false
}
