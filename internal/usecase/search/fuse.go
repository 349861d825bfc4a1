package search

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/match"
	"github.com/kailas-cloud/docintel/internal/domain/search/result"
)

// DefaultAgreementBonus is added when both lanes surface the same record.
const DefaultAgreementBonus = 0.1

// FusionPolicy holds the tunable fusion constants.
type FusionPolicy struct {
	AgreementBonus float64
}

// DefaultFusionPolicy returns the stock policy.
func DefaultFusionPolicy() FusionPolicy {
	return FusionPolicy{AgreementBonus: DefaultAgreementBonus}
}

type fusedEntry struct {
	record   content.Record
	semantic *match.Scored
	keyword  *match.Scored
}

// Fuse merges both lanes into one ranked list with at most one result per record.
//
// A record matched by one lane keeps that lane's normalized score. A record
// matched by both scores min(1, max(semantic, keyword) + bonus), so agreement
// never lowers a score and one strong lane still beats two weak ones.
// Ties go to more lanes, then newer created_at, then smaller id.
func Fuse(semantic, keyword []match.Scored, limit int, policy FusionPolicy) []result.Fused {
	bonus := max(policy.AgreementBonus, 0)

	entries := make(map[string]*fusedEntry, len(semantic)+len(keyword))
	collect := func(ms []match.Scored, slot func(*fusedEntry) **match.Scored) {
		for i := range ms {
			m := &ms[i]
			e, ok := entries[m.ContentID()]
			if !ok {
				e = &fusedEntry{record: m.Record()}
				entries[m.ContentID()] = e
			}
			if cur := slot(e); *cur == nil || m.Score() > (*cur).Score() {
				*cur = m
			}
		}
	}
	collect(semantic, func(e *fusedEntry) **match.Scored { return &e.semantic })
	collect(keyword, func(e *fusedEntry) **match.Scored { return &e.keyword })

	out := make([]result.Fused, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.fuse(bonus))
	}

	slices.SortFunc(out, compareFused)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (e *fusedEntry) fuse(bonus float64) result.Fused {
	var (
		score   float64
		lanes   []match.Lane
		reasons []string
	)
	switch {
	case e.semantic != nil && e.keyword != nil:
		score = min(1, max(e.semantic.Score(), e.keyword.Score())+bonus)
	case e.semantic != nil:
		score = e.semantic.Score()
	default:
		score = e.keyword.Score()
	}
	if e.semantic != nil {
		lanes = append(lanes, match.Semantic)
		reasons = append(reasons, e.semantic.Reasons()...)
	}
	if e.keyword != nil {
		lanes = append(lanes, match.Keyword)
		reasons = append(reasons, e.keyword.Reasons()...)
	}
	return result.New(e.record, score, lanes, reasons)
}

func compareFused(a, b result.Fused) int {
	if c := cmp.Compare(b.Score(), a.Score()); c != 0 {
		return c
	}
	if c := cmp.Compare(len(b.Lanes()), len(a.Lanes())); c != 0 {
		return c
	}
	if c := b.Record().CreatedAt().Compare(a.Record().CreatedAt()); c != 0 {
		return c
	}
	return cmp.Compare(a.ContentID(), b.ContentID())
}
