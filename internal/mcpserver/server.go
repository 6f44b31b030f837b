// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the tag statistics queries for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/trends"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp *server.MCPServer
	svc *trends.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(svc *trends.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	periodHint := "Lookback period, one of: " + strings.Join(trends.Periods(), ", ")

	s.mcp.AddTool(mcp.NewTool("top_tags",
		mcp.WithDescription("All-time tag ranking by total occurrence count, highest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of tags to return")),
	), s.topTags)

	s.mcp.AddTool(mcp.NewTool("popular_tags",
		mcp.WithDescription("Tag ranking restricted to a recent period, highest first."),
		mcp.WithString("period", mcp.Required(), mcp.Description(periodHint)),
		mcp.WithNumber("limit", mcp.Description("Maximum number of tags to return")),
	), s.popularTags)

	s.mcp.AddTool(mcp.NewTool("tag_history",
		mcp.WithDescription("Dense daily occurrence series for one tag, zero-filled, "+
			"from the history epoch through today. Suitable for charting."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag to chart (case-insensitive)")),
	), s.tagHistory)

	s.mcp.AddTool(mcp.NewTool("top_posts",
		mcp.WithDescription("Posts matching a tag within a recent period, ordered by points, paginated."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag to filter by (case-insensitive)")),
		mcp.WithString("period", mcp.Required(), mcp.Description(periodHint)),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1")),
		mcp.WithNumber("per_page", mcp.Description("Posts per page, 1-100")),
	), s.topPosts)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) topTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 0)
	tags, err := s.svc.TopTags(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tags)
}

func (s *Server) popularTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period, err := req.RequireString("period")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 0)

	tags, err := s.svc.PopularTags(ctx, period, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tags)
}

func (s *Server) tagHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	history, err := s.svc.History(ctx, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(history)
}

func (s *Server) topPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	period, err := req.RequireString("period")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page := req.GetInt("page", 1)
	perPage := req.GetInt("per_page", 0)

	res, err := s.svc.TopPosts(ctx, tag, period, page, perPage)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
