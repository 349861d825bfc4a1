package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/docintel/internal/transport/wire"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run one query and print ranked results",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "hybrid, semantic_only or literal", Value: "hybrid"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum results", Value: 10},
			&cli.StringFlag{Name: "since", Usage: "Inclusive lower date bound (YYYY-MM-DD or RFC 3339)"},
			&cli.StringFlag{Name: "until", Usage: "Exclusive upper date bound (YYYY-MM-DD or RFC 3339)"},
			&cli.StringSliceFlag{Name: "source-type", Aliases: []string{"s"}, Usage: "Restrict to a source type (repeatable)"},
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Restrict to a tag (repeatable)"},
			&cli.StringFlag{Name: "tag-logic", Usage: "Combine tags with or / and", Value: "or"},
			&cli.BoolFlag{Name: "why", Usage: "Explain each match"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of text"},
		},
		Action: searchAction,
	}
}

// queryInputFromFlags builds the query from positional args and flags.
func queryInputFromFlags(c *cli.Context) wire.QueryInput {
	limit := c.Int("limit")
	return wire.QueryInput{
		Query:       strings.Join(c.Args().Slice(), " "),
		Mode:        c.String("mode"),
		Limit:       &limit,
		Since:       c.String("since"),
		Until:       c.String("until"),
		SourceTypes: c.StringSlice("source-type"),
		Tags:        c.StringSlice("tag"),
		TagLogic:    c.String("tag-logic"),
		Why:         c.Bool("why"),
	}
}

func searchAction(c *cli.Context) error {
	in := queryInputFromFlags(c)
	asJSON := c.Bool("json")

	req, err := in.ToRequest()
	if err != nil {
		return reportSearchError(c.App.Writer, asJSON, err)
	}

	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	results, err := d.engine.Search(ctx, &req)
	if err != nil {
		return reportSearchError(c.App.Writer, asJSON, err)
	}

	out := wire.NewSearchOutput(results, in.Why)
	if asJSON {
		return writeJSONOut(c.App.Writer, out)
	}
	return renderText(c.App.Writer, out)
}

// reportSearchError prints the error body on stdout in JSON mode and returns err for the exit status.
func reportSearchError(w io.Writer, asJSON bool, err error) error {
	if asJSON {
		_ = writeJSONOut(w, wire.NewErrorBody(err))
	}
	return err
}

func writeJSONOut(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func renderText(w io.Writer, out wire.SearchOutput) error {
	if out.Count == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}

	var b strings.Builder
	for i, h := range out.Results {
		date, _, _ := strings.Cut(h.CreatedAt, "T")
		fmt.Fprintf(&b, "%d. [%.3f] %s\n", i+1, h.Score, h.Title)
		fmt.Fprintf(&b, "   %s | %s | %s | %s\n", h.ID, h.SourceType, date, strings.Join(h.Lanes, "+"))
		if h.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", oneLine(h.Snippet))
		}
		for _, r := range h.Reasons {
			fmt.Fprintf(&b, "   why: %s\n", r)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
