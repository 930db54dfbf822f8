package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const rulesURI = "dockreview://rules"

// registerResources registers all dockreview MCP resources on the given server.
func registerResources(s *server.MCPServer, h *handlers) {
	// 1. dockreview://rules - the rule catalog
	s.AddResource(
		mcplib.NewResource(
			rulesURI,
			"Rules",
			mcplib.WithResourceDescription("Every Dockerfile and Compose rule as the project configures them"),
			mcplib.WithMIMEType("application/json"),
		),
		h.rulesResource,
	)

	// 2. dockreview://rules/{id} - one rule (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			rulesURI+"/{id}",
			"Rule",
			mcplib.WithTemplateDescription("Full description of a single rule"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		h.ruleResource,
	)
}

func (h *handlers) rulesResource(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	engine, _, err := h.svc.LoadEngine(h.projectPath)
	if err != nil {
		return nil, err
	}
	return jsonContents(request.Params.URI, engine.DescribeAll())
}

func (h *handlers) ruleResource(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	id := strings.TrimPrefix(request.Params.URI, rulesURI+"/")
	if id == "" || id == request.Params.URI {
		return nil, fmt.Errorf("rule id is required")
	}
	info, err := h.describe(id)
	if err != nil {
		return nil, err
	}
	return jsonContents(request.Params.URI, info)
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
