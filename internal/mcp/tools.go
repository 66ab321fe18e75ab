package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ai-visibility-validator/internal/classifier"
	"ai-visibility-validator/internal/crawler"
	"ai-visibility-validator/internal/report"
	"ai-visibility-validator/internal/robots"
)

func registerTools(s *server.MCPServer, deps Deps) {
	s.AddTool(
		mcplib.NewTool("aivis_classify_metric",
			mcplib.WithDescription("Classify a Core Web Vitals p75 sample (ttfb or inp in ms, cls unitless) into its graded category"),
			mcplib.WithString("metric", mcplib.Required(), mcplib.Description("ttfb, cls or inp")),
			mcplib.WithNumber("value", mcplib.Required(), mcplib.Description("Sample value")),
		),
		handleClassify,
	)

	s.AddTool(
		mcplib.NewTool("aivis_evaluate_robots",
			mcplib.WithDescription("Evaluate robots.txt content for every catalogued AI crawler"),
			mcplib.WithString("content", mcplib.Required(), mcplib.Description("robots.txt body")),
		),
		handleEvaluateRobots(deps),
	)

	s.AddTool(
		mcplib.NewTool("aivis_check_robots",
			mcplib.WithDescription("Fetch a site's robots.txt and report which AI crawlers it blocks"),
			mcplib.WithString("url", mcplib.Required(), mcplib.Description("Any URL on the site")),
		),
		handleCheckRobots(deps),
	)

	s.AddTool(
		mcplib.NewTool("aivis_probe_bots",
			mcplib.WithDescription("Measure time to first byte as seen by AI crawler user agents"),
			mcplib.WithString("url", mcplib.Required(), mcplib.Description("Page to probe")),
			mcplib.WithString("bot_keys", mcplib.Description("Comma-separated probe profile keys (default all)")),
		),
		handleProbe(deps),
	)

	s.AddTool(
		mcplib.NewTool("aivis_check",
			mcplib.WithDescription("Build a full AI visibility report: CrUX grades, robots.txt verdicts and optional bot probes"),
			mcplib.WithString("url", mcplib.Required(), mcplib.Description("Page to check")),
			mcplib.WithString("form_factor", mcplib.Description("DESKTOP, PHONE or TABLET")),
			mcplib.WithBoolean("probe", mcplib.Description("Also measure bot TTFB")),
		),
		handleCheck(deps),
	)

	s.AddTool(
		mcplib.NewTool("aivis_list_bots",
			mcplib.WithDescription("List the AI crawlers and probe profiles the validator knows"),
		),
		handleListBots(deps),
	)
}

func handleClassify(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	name, err := request.RequireString("metric")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	kind, err := classifier.ParseKind(name)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	value, ok := request.GetArguments()["value"].(float64)
	if !ok {
		return errorResult("value must be a number"), nil
	}
	cat, err := classifier.Classify(kind, value)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(report.Grade{Kind: kind, Value: value, Category: cat})
}

func handleEvaluateRobots(deps Deps) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		content, err := request.RequireString("content")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(robots.BatchEvaluate(deps.Catalog.Bots, robots.Parse(content)))
	}
}

func handleCheckRobots(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		rawURL, err := request.RequireString("url")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		pageURL, err := crawler.NormalizeURL(rawURL)
		if err != nil {
			return errorResult(fmt.Sprintf("%q: %v", rawURL, err)), nil
		}
		c, err := report.CheckCrawlability(ctx, deps.Robots, pageURL, deps.Catalog.Bots)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(c)
	}
}

func handleProbe(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		rawURL, err := request.RequireString("url")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		pageURL, err := crawler.NormalizeURL(rawURL)
		if err != nil {
			return errorResult(fmt.Sprintf("%q: %v", rawURL, err)), nil
		}
		var keys []string
		if s, ok := request.GetArguments()["bot_keys"].(string); ok && s != "" {
			keys = splitAndTrim(s)
		}
		profiles := deps.Catalog.Select(keys)
		if len(profiles) == 0 {
			return errorResult("No valid bot keys provided."), nil
		}
		return jsonResult(deps.Prober.Run(ctx, pageURL, profiles))
	}
}

func handleCheck(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		rawURL, err := request.RequireString("url")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		args := request.GetArguments()
		opts := report.Options{}
		opts.FormFactor, _ = args["form_factor"].(string)
		opts.Probe, _ = args["probe"].(bool)

		rep, err := deps.Reports.Check(ctx, rawURL, opts)
		if err != nil {
			return errorResult(fmt.Sprintf("check failed: %v", err)), nil
		}
		return jsonResult(rep)
	}
}

func handleListBots(deps Deps) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(map[string]any{
			"bots":          deps.Catalog.Bots,
			"probeProfiles": deps.Catalog.Profiles,
		})
	}
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
