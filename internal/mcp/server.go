package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/quotegen/internal/docstore"
	"github.com/ziadkadry99/quotegen/internal/quotes"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes quote generation tools.
type Server struct {
	quotes *quotes.Service
	store  docstore.Store
	window int
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server. window is the number of newest
// records inspected for trending topics.
func NewServer(svc *quotes.Service, store docstore.Store, window int) *Server {
	s := &Server{
		quotes: svc,
		store:  store,
		window: window,
	}

	s.mcp = server.NewMCPServer(
		"quotegen",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(generateQuoteTool, s.handleGenerateQuote)
	s.mcp.AddTool(trendingTopicsTool, s.handleTrendingTopics)
	s.mcp.AddTool(visitorCountTool, s.handleVisitorCount)
	s.mcp.AddTool(suggestLanguagesTool, s.handleSuggestLanguages)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
