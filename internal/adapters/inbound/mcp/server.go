package mcp

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dockreview/dockreview/internal/adapters/outbound/cache"
	"github.com/dockreview/dockreview/internal/adapters/outbound/config"
	"github.com/dockreview/dockreview/internal/adapters/outbound/detector"
	"github.com/dockreview/dockreview/internal/adapters/outbound/gitinfo"
	"github.com/dockreview/dockreview/internal/adapters/outbound/parser"
	"github.com/dockreview/dockreview/internal/adapters/outbound/scanner"
	"github.com/dockreview/dockreview/internal/application"
)

// NewDockreviewMCPServer creates an MCP server with every dockreview tool and
// resource registered. Relative paths and .dockreview.yaml are resolved
// against projectPath. Reports are cached for the life of the server.
func NewDockreviewMCPServer(projectPath string, logger *slog.Logger) (*server.MCPServer, error) {
	reports, err := cache.New(cache.DefaultSize)
	if err != nil {
		return nil, fmt.Errorf("creating report cache: %w", err)
	}

	d := detector.New()
	svc := application.NewAnalyzeService(
		scanner.New(d),
		parser.New(),
		d,
		config.New(),
		application.WithCache(reports),
		application.WithGitInfo(gitinfo.New()),
		application.WithLogger(logger),
	)

	s := server.NewMCPServer(
		"dockreview",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	h := &handlers{projectPath: projectPath, svc: svc}
	registerTools(s, h)
	registerResources(s, h)

	return s, nil
}

type handlers struct {
	projectPath string
	svc         *application.AnalyzeService
}
