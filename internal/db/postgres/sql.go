package postgres

import (
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
)

// args accumulates positional parameters.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

// filterConds renders filters against record columns qualified by alias.
// The result is never stricter than filter.Filters.Matches: tag and source
// type comparisons are case-insensitive, and "other" disables source type
// pushdown because unknown stored values read back as other.
func filterConds(f filter.Filters, alias string, a *args) []string {
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}

	var conds []string
	if since := f.Since(); !since.IsZero() {
		conds = append(conds, col("created_at")+" >= "+a.add(since))
	}
	if until := f.Until(); !until.IsZero() {
		conds = append(conds, col("created_at")+" < "+a.add(until))
	}

	if sts := f.SourceTypes(); len(sts) > 0 && !slices.Contains(sts, content.Other) {
		values := make([]string, len(sts))
		for i, st := range sts {
			values[i] = string(st)
		}
		conds = append(conds, "lower("+col("source_type")+") = ANY("+a.add(values)+")")
	}

	if tags := f.Tags(); len(tags) > 0 {
		p := a.add(slices.Clone(tags))
		if f.TagLogic() == filter.And {
			conds = append(conds, "(SELECT count(DISTINCT lower(t)) FROM unnest("+col("tags")+") AS t WHERE lower(t) = ANY("+p+")) = "+
				strconv.Itoa(len(tags)))
		} else {
			conds = append(conds, "EXISTS (SELECT 1 FROM unnest("+col("tags")+") AS t WHERE lower(t) = ANY("+p+"))")
		}
	}
	return conds
}

// termCond is the keyword prefilter: any term occurring anywhere in title or body.
func termCond(terms []string, alias string, a *args) string {
	if len(terms) == 0 {
		return ""
	}
	patterns := make([]string, len(terms))
	for i, t := range terms {
		patterns[i] = "%" + likeEscaper.Replace(t) + "%"
	}
	p := a.add(patterns)
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	return "(" + prefix + "title ILIKE ANY(" + p + ") OR " + prefix + "body ILIKE ANY(" + p + "))"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
