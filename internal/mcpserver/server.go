// Package mcpserver exposes format detection, source ranking, task
// validation and search as Model Context Protocol tools.
package mcpserver

import (
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/formats"
	"github.com/jonathan/research-analyst/internal/ranking"
	"github.com/jonathan/research-analyst/internal/store"
)

// Name is the server name reported to MCP clients.
const Name = "research-analyst"

// Deps are the components the tools read from.
type Deps struct {
	Store      store.Store
	Classifier *formats.Classifier
	Ranker     *ranking.Ranker
	Logger     *zap.Logger
}

// Server wraps an MCP server with the research analyst tools registered.
type Server struct {
	store      store.Store
	classifier *formats.Classifier
	ranker     *ranking.Ranker
	logger     *zap.Logger
	mcpServer  *server.MCPServer
}

// New creates the MCP server and registers its tools.
func New(deps Deps, version string) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Classifier == nil {
		deps.Classifier = formats.NewClassifier(formats.DefaultRules(), formats.DefaultWeights(), deps.Logger)
	}
	if deps.Ranker == nil {
		deps.Ranker = ranking.NewRanker(ranking.DefaultRecency())
	}

	s := &Server{
		store:      deps.Store,
		classifier: deps.Classifier,
		ranker:     deps.Ranker,
		logger:     deps.Logger,
	}
	s.mcpServer = server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// HTTPHandler serves the tools over the streamable HTTP transport.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer)
}

// ServeStdio serves the tools over stdin and stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
