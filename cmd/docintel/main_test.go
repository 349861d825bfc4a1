package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/transport/wire"
)

// captureSearchInput runs the search command with args and returns the parsed query.
func captureSearchInput(t *testing.T, args ...string) wire.QueryInput {
	t.Helper()
	var got wire.QueryInput
	cmd := searchCommand()
	cmd.Action = func(c *cli.Context) error {
		got = queryInputFromFlags(c)
		return nil
	}
	app := &cli.App{Name: "docintel", Commands: []*cli.Command{cmd}}
	if err := app.Run(append([]string{"docintel", "search"}, args...)); err != nil {
		t.Fatalf("run: %v", err)
	}
	return got
}

func TestSearchFlags_Defaults(t *testing.T) {
	in := captureSearchInput(t, "water", "damage")
	if in.Query != "water damage" {
		t.Errorf("query = %q", in.Query)
	}
	if in.Mode != "hybrid" || in.Limit == nil || *in.Limit != 10 || in.TagLogic != "or" || in.Why {
		t.Errorf("unexpected defaults: %+v", in)
	}
}

func TestSearchFlags_All(t *testing.T) {
	in := captureSearchInput(t,
		"--mode", "literal", "-n", "3",
		"--since", "2024-01-01", "--until", "2024-02-01",
		"-s", "pdf", "--source-type", "email",
		"-t", "claims", "--tag", "urgent", "--tag-logic", "and",
		"--why", "roof leak",
	)
	if in.Query != "roof leak" || in.Mode != "literal" || in.Limit == nil || *in.Limit != 3 {
		t.Errorf("unexpected input: %+v", in)
	}
	if strings.Join(in.SourceTypes, ",") != "pdf,email" || strings.Join(in.Tags, ",") != "claims,urgent" {
		t.Errorf("filters = %v / %v", in.SourceTypes, in.Tags)
	}
	if in.TagLogic != "and" || !in.Why || in.Since != "2024-01-01" || in.Until != "2024-02-01" {
		t.Errorf("unexpected input: %+v", in)
	}
	if _, err := in.ToRequest(); err != nil {
		t.Errorf("flags should form a valid request: %v", err)
	}
}

func TestSearchAction_ValidationBeforeWiring(t *testing.T) {
	var out bytes.Buffer
	app := &cli.App{Name: "docintel", Writer: &out, Commands: []*cli.Command{searchCommand()}}

	err := app.Run([]string{"docintel", "search", "--json", "--limit", "-1", "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(out.String(), `"code": "validation_error"`) {
		t.Errorf("expected JSON error body, got %q", out.String())
	}
	if exitCode(err) != 2 {
		t.Errorf("exit code = %d", exitCode(err))
	}
}

func TestSearchAction_ZeroLimitRejected(t *testing.T) {
	var out bytes.Buffer
	app := &cli.App{Name: "docintel", Writer: &out, Commands: []*cli.Command{searchCommand()}}

	err := app.Run([]string{"docintel", "search", "--json", "--limit", "0", "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for --limit 0, got %v", err)
	}
	if exitCode(err) != 2 {
		t.Errorf("exit code = %d", exitCode(err))
	}
}

func TestRenderText(t *testing.T) {
	out := wire.SearchOutput{
		Count: 1,
		Results: []wire.Hit{{
			ID:         "a",
			SourceType: "pdf",
			Title:      "Water Damage Report",
			Snippet:    "Basement\n  flooded",
			CreatedAt:  "2024-03-01T00:00:00Z",
			Score:      0.97,
			Lanes:      []string{"semantic", "keyword"},
			Reasons:    []string{"semantic:0.92", "keyword:'water damage'"},
		}},
	}
	var buf bytes.Buffer
	if err := renderText(&buf, out); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "1. [0.970] Water Damage Report\n" +
		"   a | pdf | 2024-03-01 | semantic+keyword\n" +
		"   Basement flooded\n" +
		"   why: semantic:0.92\n" +
		"   why: keyword:'water damage'\n"
	if buf.String() != want {
		t.Errorf("render mismatch:\ngot:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestRenderText_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := renderText(&buf, wire.NewSearchOutput(nil, false)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No results.\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", domain.ErrValidation), 2},
		{fmt.Errorf("x: %w", domain.ErrVectorUnavailable), 3},
		{fmt.Errorf("x: %w", domain.ErrEmbedding), 4},
		{fmt.Errorf("x: %w", domain.ErrStoreUnavailable), 5},
		{errors.New("config missing"), 1},
	}
	seen := map[int]bool{}
	for _, tt := range tests {
		got := exitCode(tt.err)
		if got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
		seen[got] = true
	}
	if len(seen) != len(tests) {
		t.Error("exit codes must be distinct per kind")
	}
}

func TestReindexFilters(t *testing.T) {
	f, err := reindexFilters(nil)
	if err != nil || !f.IsEmpty() {
		t.Fatalf("expected empty filters, got %+v / %v", f, err)
	}

	f, err = reindexFilters([]string{"PDF", "upload"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sts := f.SourceTypes(); len(sts) != 2 || sts[0] != content.PDF || sts[1] != content.Upload {
		t.Errorf("source types = %v", sts)
	}

	if _, err := reindexFilters([]string{"fax"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	if err := app.Run([]string{"docintel", "version"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "docintel dev") {
		t.Errorf("got %q", buf.String())
	}
}
