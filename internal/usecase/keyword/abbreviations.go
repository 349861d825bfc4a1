package keyword

import "maps"

// Abbreviations maps a shorthand token to the full terms it stands for.
// Keys and expansions are stored normalized (lower-case, single-spaced words).
type Abbreviations map[string][]string

// NewAbbreviations normalizes m into an Abbreviations table.
// Blank keys and expansions are dropped; duplicate expansions collapse.
func NewAbbreviations(m map[string][]string) Abbreviations {
	out := make(Abbreviations, len(m))
	for k, exps := range m {
		key := normalize(k)
		if key == "" {
			continue
		}
		for _, e := range exps {
			if n := normalize(e); n != "" && n != key && !contains(out[key], n) {
				out[key] = append(out[key], n)
			}
		}
	}
	return out
}

// DefaultAbbreviations returns the built-in legal shorthand table.
func DefaultAbbreviations() Abbreviations {
	return NewAbbreviations(map[string][]string{
		"sol":  {"statute of limitations"},
		"poa":  {"power of attorney"},
		"nda":  {"non disclosure agreement", "nondisclosure agreement"},
		"llc":  {"limited liability company"},
		"msa":  {"master services agreement"},
		"sow":  {"statement of work"},
		"tro":  {"temporary restraining order"},
		"hoa":  {"homeowners association", "home owners association"},
		"ll":   {"landlord"},
		"tt":   {"tenant"},
		"dmg":  {"damage", "damages"},
		"atty": {"attorney"},
		"esq":  {"esquire", "attorney"},
		"pi":   {"personal injury"},
		"ud":   {"unlawful detainer"},
		"cc":   {"carbon copy", "civil code"},
		"ssn":  {"social security number"},
		"depo": {"deposition"},
	})
}

// Merge returns a copy of a with overrides applied. An override replaces the
// expansions of an existing key; an empty override removes the key.
func (a Abbreviations) Merge(overrides map[string][]string) Abbreviations {
	out := maps.Clone(a)
	if out == nil {
		out = Abbreviations{}
	}
	norm := NewAbbreviations(overrides)
	for k := range overrides {
		key := normalize(k)
		if exps, ok := norm[key]; ok {
			out[key] = exps
		} else {
			delete(out, key)
		}
	}
	return out
}

// Expansions returns the full terms for token, or nil.
func (a Abbreviations) Expansions(token string) []string {
	return a[token]
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
