// Package mcpserver exposes the portfolio collections as MCP tools.
package mcpserver

import (
	"context"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/text/language"

	"github.com/salmonumbrella/folio-cli/internal/query"
	"github.com/salmonumbrella/folio-cli/internal/resource"
)

// Server wires the tools to a registry and a data service.
type Server struct {
	Registry *resource.Registry
	Service  *query.Service
	Locale   language.Tag
	Version  string
}

// MCP builds the mcp-go server with every tool registered.
func (s *Server) MCP() *server.MCPServer {
	version := s.Version
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer(
		"folio MCP",
		version,
		server.WithToolCapabilities(false),
		server.WithInstructions("List, read and delete the records of a portfolio CMS. Call list_resources first."),
		server.WithRecovery(),
	)
	registerTools(srv, s)
	return srv
}

// ServeStdio answers MCP requests on in/out until ctx is done or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	if s.Registry == nil || s.Service == nil {
		return fmt.Errorf("mcp server requires a registry and a service")
	}
	return server.NewStdioServer(s.MCP()).Listen(ctx, in, out)
}
