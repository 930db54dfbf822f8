package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dockreview/dockreview/internal/application"
	"github.com/dockreview/dockreview/internal/domain"
	"github.com/dockreview/dockreview/internal/domain/check"
)

// registerTools registers all dockreview MCP tools on the given server.
func registerTools(s *server.MCPServer, h *handlers) {
	// 1. dockreview_analyze
	s.AddTool(
		mcplib.NewTool("dockreview_analyze",
			mcplib.WithDescription("Analyze a Dockerfile or Compose file and return its issues and scores as JSON. Pass either a path or the file content."),
			mcplib.WithString("path",
				mcplib.Description("File or directory to analyze, relative to the project (defaults to the project root)"),
			),
			mcplib.WithString("content",
				mcplib.Description("File content to analyze instead of a path"),
			),
			mcplib.WithString("kind",
				mcplib.Description("Kind of the content; detected when omitted"),
				mcplib.Enum(string(domain.KindDockerfile), string(domain.KindCompose)),
			),
			mcplib.WithString("name",
				mcplib.Description("File name reported for the content (default Dockerfile or docker-compose.yml)"),
			),
			mcplib.WithString("severity",
				mcplib.Description("Minimum severity to return"),
				mcplib.Enum(string(domain.SeverityCritical), string(domain.SeverityWarning), string(domain.SeveritySuggestion)),
			),
		),
		h.analyze,
	)

	// 2. dockreview_rules
	s.AddTool(
		mcplib.NewTool("dockreview_rules",
			mcplib.WithDescription("List every rule with its severity and category as the project configures them"),
		),
		h.rules,
	)

	// 3. dockreview_explain
	s.AddTool(
		mcplib.NewTool("dockreview_explain",
			mcplib.WithDescription("Explain one rule: what it checks, why it matters and how to fix it"),
			mcplib.WithString("id",
				mcplib.Required(),
				mcplib.Description("Rule id, e.g. DF001 (case-insensitive)"),
			),
		),
		h.explain,
	)
}

type analyzeResult struct {
	Reports []*domain.Report    `json:"reports"`
	Summary application.Summary `json:"summary"`
}

func (h *handlers) analyze(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var minSeverity domain.Severity
	if v := request.GetString("severity", ""); v != "" {
		sev, err := domain.ParseSeverity(v)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		minSeverity = sev
	}

	var reports []*domain.Report
	if content := request.GetString("content", ""); content != "" {
		r, err := h.analyzeContent(request, content)
		if err != nil {
			return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		reports = []*domain.Report{r}
	} else {
		path := request.GetString("path", "")
		if path == "" {
			path = h.projectPath
		} else if !filepath.IsAbs(path) {
			path = filepath.Join(h.projectPath, path)
		}
		a, err := h.svc.AnalyzePath(ctx, path)
		if err != nil {
			return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		reports = a.Reports
	}

	if minSeverity != "" {
		for i, r := range reports {
			filtered := *r
			filtered.Issues = check.Filter(r.Issues, minSeverity)
			reports[i] = &filtered
		}
	}
	return jsonResult(analyzeResult{Reports: reports, Summary: application.Summarize(reports)})
}

func (h *handlers) analyzeContent(request mcplib.CallToolRequest, content string) (*domain.Report, error) {
	_, cfg, err := h.svc.LoadEngine(h.projectPath)
	if err != nil {
		return nil, err
	}

	kind := domain.FileKind(request.GetString("kind", ""))
	name := request.GetString("name", "")
	if name == "" {
		switch kind {
		case domain.KindCompose:
			name = "docker-compose.yml"
		case domain.KindDockerfile:
			name = "Dockerfile"
		default:
			name = "input"
		}
	}
	return h.svc.AnalyzeContent(kind, name, []byte(content), cfg)
}

func (h *handlers) rules(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	engine, _, err := h.svc.LoadEngine(h.projectPath)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(engine.DescribeAll())
}

func (h *handlers) explain(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	info, err := h.describe(id)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(info)
}

func (h *handlers) describe(id string) (application.RuleInfo, error) {
	engine, _, err := h.svc.LoadEngine(h.projectPath)
	if err != nil {
		return application.RuleInfo{}, err
	}
	rule, ok := engine.Catalog.Lookup(id)
	if !ok {
		return application.RuleInfo{}, fmt.Errorf("unknown rule: %s", id)
	}
	return engine.Describe(rule), nil
}

// jsonResult marshals v to indented JSON and wraps it in a tool result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result flagged as an error.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
