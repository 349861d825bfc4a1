package keyword

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {},
	"that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "with": {},
}

// words splits text into lower-case letter/digit runs.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalize collapses text into single-spaced lower-case words.
func normalize(text string) string {
	return strings.Join(words(text), " ")
}

// padded wraps normalized text in spaces so a term matches on word
// boundaries with a plain substring test.
func padded(text string) string {
	return " " + normalize(text) + " "
}

// tokenize returns the distinct query tokens in order, without stop words.
// A query made only of stop words keeps them.
func tokenize(query string) []string {
	all := words(query)
	out := make([]string, 0, len(all))
	seen := make(map[string]struct{}, len(all))
	for _, w := range all {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	if len(out) == 0 && len(all) > 0 {
		for _, w := range all {
			if _, dup := seen[w]; !dup {
				seen[w] = struct{}{}
				out = append(out, w)
			}
		}
	}
	return out
}

// appendUnique appends the words of ws not already in dst.
func appendUnique(dst []string, ws ...string) []string {
	for _, w := range ws {
		if !contains(dst, w) {
			dst = append(dst, w)
		}
	}
	return dst
}
