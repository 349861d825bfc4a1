package keyword

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
	"github.com/kailas-cloud/docintel/internal/domain/search/match"
	"github.com/kailas-cloud/docintel/internal/logger"
	"github.com/kailas-cloud/docintel/internal/metrics"
)

// Scoring defaults.
const (
	DefaultTitleWeight  = 2.0
	DefaultBodyWeight   = 1.0
	DefaultPhraseBonus  = 1.0
	DefaultStoreTimeout = 5 * time.Second
)

// Config tunes lexical scoring. Zero values take the defaults; a negative
// PhraseBonus disables the phrase component. A nil Abbreviations table
// disables expansion.
type Config struct {
	TitleWeight   float64
	BodyWeight    float64
	PhraseBonus   float64
	StoreTimeout  time.Duration
	Abbreviations Abbreviations
}

func (c Config) withDefaults() Config {
	if c.TitleWeight <= 0 {
		c.TitleWeight = DefaultTitleWeight
	}
	if c.BodyWeight <= 0 {
		c.BodyWeight = DefaultBodyWeight
	}
	switch {
	case c.PhraseBonus == 0:
		c.PhraseBonus = DefaultPhraseBonus
	case c.PhraseBonus < 0:
		c.PhraseBonus = 0
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = DefaultStoreTimeout
	}
	return c
}

// Lane scores content store records by term overlap with the query.
type Lane struct {
	store ContentStore
	cfg   Config
}

// New creates a keyword lane.
func New(store ContentStore, cfg Config) *Lane {
	return &Lane{store: store, cfg: cfg.withDefaults()}
}

type field string

const (
	inTitle field = "title"
	inBody  field = "body"
)

// termGroup is one query token with its abbreviation expansions.
// A group matches when any alternative matches.
type termGroup struct {
	token      string
	expansions []string
}

// Search matches tokens (and their expansions) on word boundaries in title and body.
func (l *Lane) Search(ctx context.Context, query string, filters filter.Filters) ([]match.Scored, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []match.Scored{}, nil
	}

	groups := make([]termGroup, len(tokens))
	var hint []string
	for i, tok := range tokens {
		groups[i] = termGroup{token: tok, expansions: l.cfg.Abbreviations.Expansions(tok)}
		hint = appendUnique(hint, tok)
		// Expansions match on normalized word sequences, so the store only
		// sees their words: "Non-Disclosure" and line-wrapped text still pass.
		for _, exp := range groups[i].expansions {
			hint = appendUnique(hint, tokenize(exp)...)
		}
	}

	phrase := ""
	if len(groups) >= 2 {
		phrase = normalize(query)
	}
	maxScore := float64(len(groups)) * l.cfg.TitleWeight
	if phrase != "" {
		maxScore += l.cfg.PhraseBonus
	}

	return l.scan(ctx, filters, hint, func(r content.Record) (float64, []string, bool) {
		title, body := padded(r.Title()), padded(r.Body())

		var raw float64
		var reasons []string
		for _, g := range groups {
			term, f, ok := g.best(title, body)
			if !ok {
				continue
			}
			raw += l.weight(f)
			if term == g.token {
				reasons = append(reasons, fmt.Sprintf("keyword:'%s' (%s)", g.token, f))
			} else {
				reasons = append(reasons, fmt.Sprintf("keyword:'%s'→'%s' (%s)", g.token, term, f))
			}
		}
		if raw == 0 {
			return 0, nil, false
		}
		if phrase != "" && (strings.Contains(title, " "+phrase+" ") || strings.Contains(body, " "+phrase+" ")) {
			raw += l.cfg.PhraseBonus
			reasons = append(reasons, fmt.Sprintf("keyword:phrase '%s'", phrase))
		}
		return raw, reasons, true
	}, maxScore)
}

// SearchLiteral matches the whole trimmed query as a case-insensitive
// substring. No tokenization, no abbreviation expansion.
func (l *Lane) SearchLiteral(ctx context.Context, query string, filters filter.Filters) ([]match.Scored, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []match.Scored{}, nil
	}
	needle := strings.ToLower(q)
	maxScore := l.cfg.TitleWeight + l.cfg.PhraseBonus

	return l.scan(ctx, filters, []string{q}, func(r content.Record) (float64, []string, bool) {
		var f field
		switch {
		case strings.Contains(strings.ToLower(r.Title()), needle):
			f = inTitle
		case strings.Contains(strings.ToLower(r.Body()), needle):
			f = inBody
		default:
			return 0, nil, false
		}
		raw := l.weight(f) + l.cfg.PhraseBonus
		return raw, []string{fmt.Sprintf("keyword:exact '%s' (%s)", q, f)}, true
	}, maxScore)
}

type scorer func(content.Record) (raw float64, reasons []string, ok bool)

// scan streams candidates under the store timeout, applies filters as a hard
// gate before scoring, normalizes by maxScore and orders the matches.
func (l *Lane) scan(
	ctx context.Context, filters filter.Filters, hint []string, score scorer, maxScore float64,
) ([]match.Scored, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.StoreTimeout)
	defer cancel()

	out := []match.Scored{}
	seen := make(map[string]struct{})
	for rec, err := range l.store.Query(ctx, filters, hint) {
		if err != nil {
			return nil, storeError(err)
		}
		if !filters.Matches(rec) {
			continue
		}
		if _, dup := seen[rec.ID()]; dup {
			continue
		}
		raw, reasons, ok := score(rec)
		if !ok {
			continue
		}
		seen[rec.ID()] = struct{}{}
		out = append(out, match.New(match.Keyword, rec, raw, raw/maxScore, reasons))
	}
	if err := ctx.Err(); err != nil {
		return nil, storeError(err)
	}

	slices.SortFunc(out, func(a, b match.Scored) int {
		if c := cmp.Compare(b.Score(), a.Score()); c != 0 {
			return c
		}
		return cmp.Compare(a.ContentID(), b.ContentID())
	})

	metrics.LaneMatchesTotal.WithLabelValues(string(match.Keyword)).Add(float64(len(out)))
	logger.FromContext(ctx).Debug("Keyword lane done", zap.Int("matches", len(out)))
	return out, nil
}

func (l *Lane) weight(f field) float64 {
	if f == inTitle {
		return l.cfg.TitleWeight
	}
	return l.cfg.BodyWeight
}

// best returns the alternative that hits the strongest field. The literal
// token wins ties with expansions.
func (g termGroup) best(title, body string) (string, field, bool) {
	alts := append([]string{g.token}, g.expansions...)
	for _, a := range alts {
		if strings.Contains(title, " "+a+" ") {
			return a, inTitle, true
		}
	}
	for _, a := range alts {
		if strings.Contains(body, " "+a+" ") {
			return a, inBody, true
		}
	}
	return "", "", false
}

func storeError(err error) error {
	return fmt.Errorf("keyword lane: %w: %w", domain.ErrStoreUnavailable, err)
}
