// Package mcp exposes the validator as Model Context Protocol tools.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"ai-visibility-validator/internal/bots"
	"ai-visibility-validator/internal/report"
)

// Checker builds full reports.
type Checker interface {
	Check(ctx context.Context, rawURL string, opts report.Options) (*report.Report, error)
}

// Deps are the collaborators behind the tools.
type Deps struct {
	Reports Checker
	Prober  report.ProbeRunner
	Robots  report.TextFetcher
	Catalog bots.Catalog
}

// NewServer creates an MCP server with every validator tool registered.
func NewServer(version string, deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"aivis",
		version,
		server.WithToolCapabilities(true),
	)
	registerTools(s, deps)
	return s
}
