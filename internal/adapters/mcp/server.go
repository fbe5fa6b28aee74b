// Package mcpadapter exposes the knowledge base to MCP clients as tools.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/core/ports"
)

const (
	ServerName    = "cto-coach"
	ServerVersion = "1.0.0"

	maxSearchLimit = 20
)

type ToolServer struct {
	searcher ports.DocumentSearcher
	chat     ports.ChatService
	catalog  ports.DocumentCatalog
}

func NewToolServer(searcher ports.DocumentSearcher, chat ports.ChatService, catalog ports.DocumentCatalog) *ToolServer {
	return &ToolServer{
		searcher: searcher,
		chat:     chat,
		catalog:  catalog,
	}
}

// MCPServer builds the protocol server with every tool registered.
func (s *ToolServer) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	srv.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Rank knowledge-base documents against a free-text query."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
		mcp.WithString("category", mcp.Description("Only documents in this category")),
	), s.handleSearch)

	srv.AddTool(mcp.NewTool("ask",
		mcp.WithDescription("Ask the CTO coach a question answered from the knowledge base."),
		mcp.WithString("message", mcp.Required(), mcp.Description("Question for the coach")),
		mcp.WithString("sessionId", mcp.Description("Existing chat session; a new one is created when empty")),
	), s.handleAsk)

	srv.AddTool(mcp.NewTool("categories",
		mcp.WithDescription("List the document categories currently in the knowledge base."),
	), s.handleCategories)

	return srv
}

// ServeStdio runs the tool server over stdin/stdout until ctx is done.
func (s *ToolServer) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.MCPServer()).Listen(ctx, in, out)
}

type searchHit struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	Summary        string   `json:"summary"`
	RelevanceScore float64  `json:"relevanceScore"`
}

func (s *ToolServer) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 0)
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	results, err := s.searcher.Search(ctx, query, limit, domain.SearchFilter{
		Category: strings.TrimSpace(req.GetString("category", "")),
	})
	if err != nil {
		return toolError("search", err), nil
	}

	hits := make([]searchHit, 0, len(results))
	for _, result := range results {
		hits = append(hits, searchHit{
			ID:             result.ID,
			Title:          result.Title,
			Category:       result.Category,
			Tags:           result.Tags,
			Summary:        result.Summary,
			RelevanceScore: result.RelevanceScore,
		})
	}
	return jsonResult(map[string]any{"query": query, "results": hits})
}

func (s *ToolServer) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessionID := strings.TrimSpace(req.GetString("sessionId", ""))
	if sessionID == "" {
		session, err := s.chat.CreateSession(ctx)
		if err != nil {
			return toolError("ask", err), nil
		}
		sessionID = session.ID
	}

	reply, err := s.chat.SendMessage(ctx, sessionID, message)
	if err != nil {
		return toolError("ask", err), nil
	}
	sources := reply.Sources
	if sources == nil {
		sources = []domain.Source{}
	}
	return jsonResult(map[string]any{
		"response":  reply.Answer,
		"sessionId": reply.SessionID,
		"sources":   sources,
	})
}

func (s *ToolServer) handleCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return toolError("categories", err), nil
	}
	if categories == nil {
		categories = []string{}
	}
	return jsonResult(map[string]any{"categories": categories})
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// toolError reports failures inside the tool result so the client model can see them.
func toolError(tool string, err error) *mcp.CallToolResult {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrSessionNotFound),
		domain.IsKind(err, domain.ErrDocumentNotFound):
		return mcp.NewToolResultError(err.Error())
	default:
		slog.Error("mcp_tool_failed", "tool", tool, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %s", tool, kindMessage(err)))
	}
}

func kindMessage(err error) string {
	for _, kind := range []error{
		domain.ErrUpstreamAuth,
		domain.ErrUpstreamQuota,
		domain.ErrUpstreamContentFiltered,
		domain.ErrUpstreamFailure,
		domain.ErrTemporary,
	} {
		if domain.IsKind(err, kind) {
			return kind.Error()
		}
	}
	return "internal error"
}
