// Package mcp exposes the search engine as an MCP tool over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docintel/internal/domain/search/request"
	"github.com/kailas-cloud/docintel/internal/domain/search/result"
	"github.com/kailas-cloud/docintel/internal/logger"
	"github.com/kailas-cloud/docintel/internal/transport/wire"
)

// ToolSearch is the name of the search tool.
const ToolSearch = "search_documents"

// Searcher runs one query.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Fused, error)
}

// NewServer creates an MCP server with the search tool registered.
func NewServer(search Searcher, version string, log *zap.Logger) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "docintel",
		Version: version,
	}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name: ToolSearch,
		Description: "Search stored emails, PDFs and documents. Hybrid mode combines semantic and keyword " +
			"matching and fails when the vector index is down; literal mode matches exact text only.",
	}, NewSearchHandler(search, log))
	return server
}

// NewSearchHandler returns a tool handler backed by search. Pass it to mcp.AddTool.
// Failures become tool errors prefixed with their stable kind id.
func NewSearchHandler(
	search Searcher,
	log *zap.Logger,
) func(context.Context, *mcpsdk.CallToolRequest, wire.QueryInput) (*mcpsdk.CallToolResult, wire.SearchOutput, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, in wire.QueryInput) (*mcpsdk.CallToolResult, wire.SearchOutput, error) {
		ctx, _ = logger.With(logger.ContextWithLogger(ctx, log), zap.String("tool", ToolSearch))

		req, err := in.ToRequest()
		if err != nil {
			return nil, wire.SearchOutput{}, toolError(err)
		}

		results, err := search.Search(ctx, &req)
		if err != nil {
			log.Warn("search tool failed", zap.String("mode", string(req.Mode())), zap.Error(err))
			return nil, wire.SearchOutput{}, toolError(err)
		}
		return nil, wire.NewSearchOutput(results, in.Why), nil
	}
}

func toolError(err error) error {
	body := wire.NewErrorBody(err)
	return fmt.Errorf("%s: %s", body.Code, body.Message)
}

// Run serves over stdio until ctx is done or stdin closes.
func Run(ctx context.Context, server *mcpsdk.Server, log *zap.Logger) error {
	if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		// EOF / "server is closing" is expected when stdin closes
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
			log.Debug("MCP server stopped", zap.Error(err))
			return nil
		}
		return fmt.Errorf("run mcp server: %w", err)
	}
	return nil
}
