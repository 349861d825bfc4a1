package content

import (
	"fmt"
	"strings"
	"time"
)

// SourceType is the origin of a content record.
type SourceType string

// Source type constants.
const (
	Email        SourceType = "email"
	EmailMessage SourceType = "email_message"
	PDF          SourceType = "pdf"
	Upload       SourceType = "upload"
	Document     SourceType = "document"
	Other        SourceType = "other"
)

// AllSourceTypes lists every known source type in declaration order.
var AllSourceTypes = []SourceType{Email, EmailMessage, PDF, Upload, Document, Other}

// ParseSourceType parses s case-insensitively. Unknown values are an error.
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("unknown source type %q", s)
	}
	return st, nil
}

// SourceTypeFromStorage maps a stored value to a SourceType, falling back to Other.
func SourceTypeFromStorage(s string) SourceType {
	st, err := ParseSourceType(s)
	if err != nil {
		return Other
	}
	return st
}

// IsValid reports whether the source type is one of the supported values.
func (s SourceType) IsValid() bool {
	switch s {
	case Email, EmailMessage, PDF, Upload, Document, Other:
		return true
	}
	return false
}

// Record is a normalized piece of content held by the content store.
// The core only reads records; identity is by id.
type Record struct {
	id         string
	sourceType SourceType
	title      string
	body       string
	createdAt  time.Time
	tags       []string
}

// NewRecord creates a record. Tags are lower-cased and deduplicated.
func NewRecord(id string, st SourceType, title, body string, createdAt time.Time, tags []string) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("record id is required")
	}
	if !st.IsValid() {
		return Record{}, fmt.Errorf("unknown source type %q", st)
	}
	return Record{
		id:         id,
		sourceType: st,
		title:      title,
		body:       body,
		createdAt:  createdAt.UTC(),
		tags:       normalizeTags(tags),
	}, nil
}

// ID returns the record identifier.
func (r Record) ID() string { return r.id }

// SourceType returns the record origin.
func (r Record) SourceType() SourceType { return r.sourceType }

// Title returns the record title.
func (r Record) Title() string { return r.title }

// Body returns the record body text.
func (r Record) Body() string { return r.body }

// CreatedAt returns the creation timestamp in UTC.
func (r Record) CreatedAt() time.Time { return r.createdAt }

// Tags returns a copy of the normalized tags.
func (r Record) Tags() []string {
	out := make([]string, len(r.tags))
	copy(out, r.tags)
	return out
}

// HasTag reports whether the record carries tag (case-insensitive).
func (r Record) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range r.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// EmbeddingText is the text the write path embeds for this record.
func (r Record) EmbeddingText() string {
	if r.title == "" {
		return r.body
	}
	if r.body == "" {
		return r.title
	}
	return r.title + "\n\n" + r.body
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
