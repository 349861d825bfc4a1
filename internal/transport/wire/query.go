// Package wire holds the JSON shapes shared by the HTTP, MCP and CLI surfaces.
package wire

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
	"github.com/kailas-cloud/docintel/internal/domain/search/mode"
	"github.com/kailas-cloud/docintel/internal/domain/search/request"
)

// dateOnly is accepted alongside RFC 3339 for since/until.
const dateOnly = "2006-01-02"

// QueryInput is the caller-facing query. Zero values mean "not set"; an
// absent limit takes the default while an explicit 0 is rejected.
type QueryInput struct {
	Query       string   `json:"query" jsonschema:"search text"`
	Mode        string   `json:"mode,omitempty" jsonschema:"hybrid (default), semantic_only or literal"`
	Limit       *int     `json:"limit,omitempty" jsonschema:"maximum results, default 10, max 100"`
	Since       string   `json:"since,omitempty" jsonschema:"inclusive lower bound, RFC 3339 or YYYY-MM-DD"`
	Until       string   `json:"until,omitempty" jsonschema:"exclusive upper bound, RFC 3339 or YYYY-MM-DD"`
	SourceTypes []string `json:"source_types,omitempty" jsonschema:"restrict to email, email_message, pdf, upload, document, other"`
	Tags        []string `json:"tags,omitempty" jsonschema:"restrict to records carrying these tags"`
	TagLogic    string   `json:"tag_logic,omitempty" jsonschema:"or (default) or and"`
	Why         bool     `json:"why,omitempty" jsonschema:"include match reasons per hit"`
}

// ToRequest validates the input. Every error wraps domain.ErrValidation.
func (in QueryInput) ToRequest() (request.Request, error) {
	m, ok := mode.Parse(in.Mode)
	if !ok {
		return request.Request{}, fmt.Errorf("invalid search mode %q: %w", in.Mode, domain.ErrValidation)
	}

	since, err := parseTime("since", in.Since)
	if err != nil {
		return request.Request{}, err
	}
	until, err := parseTime("until", in.Until)
	if err != nil {
		return request.Request{}, err
	}

	var sourceTypes []content.SourceType
	for _, s := range in.SourceTypes {
		st, perr := content.ParseSourceType(s)
		if perr != nil {
			return request.Request{}, fmt.Errorf("source_types: %w: %w", perr, domain.ErrValidation)
		}
		sourceTypes = append(sourceTypes, st)
	}

	logic, err := filter.ParseTagLogic(in.TagLogic)
	if err != nil {
		return request.Request{}, fmt.Errorf("tag_logic: %w", err)
	}

	filters, err := filter.New(since, until, sourceTypes, in.Tags, logic)
	if err != nil {
		return request.Request{}, fmt.Errorf("filters: %w", err)
	}

	limit := request.DefaultLimit
	if in.Limit != nil {
		limit = *in.Limit
	}

	req, err := request.New(in.Query, m, filters, limit)
	if err != nil {
		return request.Request{}, fmt.Errorf("request: %w", err)
	}
	return req, nil
}

func parseTime(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s: %q is not RFC 3339 or YYYY-MM-DD: %w", field, s, domain.ErrValidation)
}
