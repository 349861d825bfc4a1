package mode

import "testing"

func TestIsValid(t *testing.T) {
	valid := []Mode{Hybrid, SemanticOnly, Literal}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Mode{"", "keyword", "semantic", "HYBRID"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"", Hybrid, true},
		{"HYBRID", Hybrid, true},
		{" semantic_only ", SemanticOnly, true},
		{"literal", Literal, true},
		{"fuzzy", "fuzzy", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNeedsVector(t *testing.T) {
	if !Hybrid.NeedsVector() || !SemanticOnly.NeedsVector() {
		t.Error("hybrid and semantic_only need the vector index")
	}
	if Literal.NeedsVector() {
		t.Error("literal must not need the vector index")
	}
}
