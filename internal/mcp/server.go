package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
)

// Server wraps the mcp-go MCPServer.
type Server struct {
	mcp *server.MCPServer
}

// NewServer creates a new MCP server instance with tool and resource support.
func NewServer(name, version string) *Server {
	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)
	return &Server{mcp: mcpServer}
}

// MCP returns the underlying MCPServer for tool registration.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// RegisterTool is a convenience wrapper for registering a tool.
func (s *Server) RegisterTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
}

// Handler returns a stateless streamable HTTP transport. The caller's mux
// decides the mount path.
func (s *Server) Handler() http.Handler {
	httpServer := server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
	return requirePOST(httpServer)
}

// requirePOST returns 405 for anything but POST; this server never streams
// server-initiated messages.
func requirePOST(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			log.Debug().Str("method", r.Method).Msg("Rejected non-POST MCP request")
			w.Header().Set("Allow", "POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}
