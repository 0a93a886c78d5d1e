// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Trendline MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Trendline Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: derive_metrics ---
	s.AddTool(mcp.NewTool("derive_metrics",
		mcp.WithDescription("Derive summary metrics from a monthly count series: totals and averages around a pivot period, improvement, peak, longest increasing run, recovery rate and quarterly averages."),
		mcp.WithString("input", mcp.Description("Path to a series file (json, yaml, csv or parquet). Defaults to the builtin dataset.")),
		mcp.WithString("points", mcp.Description(`Inline series as a JSON list, e.g. [{"period":"Jan '24","value":3}]. Takes precedence over input.`)),
		mcp.WithString("name", mcp.Description("Dataset name override.")),
		mcp.WithString("pivot", mcp.Description("Pivot period such as \"Oct '23\". Use 'none' to disable the pivot fields.")),
		mcp.WithString("marker", mcp.Description("Marker period for the recovery rate. Use 'none' to disable it.")),
		mcp.WithString("view", mcp.Description("Field selection. Defaults to 'full'."), mcp.Enum("full", "summary", "recovery", "quarterly")),
	), h.handleDeriveMetrics)

	// --- 2. Tool: get_quarterly_averages ---
	s.AddTool(mcp.NewTool("get_quarterly_averages",
		mcp.WithDescription("Average a monthly count series per calendar quarter, with the change from the previous quarter."),
		mcp.WithString("input", mcp.Description("Path to a series file. Defaults to the builtin dataset.")),
		mcp.WithString("points", mcp.Description("Inline series as a JSON list. Takes precedence over input.")),
		mcp.WithString("name", mcp.Description("Dataset name override.")),
	), h.handleGetQuarterlyAverages)

	// --- 3. Tool: get_field_definitions ---
	s.AddTool(mcp.NewTool("get_field_definitions",
		mcp.WithDescription("Describe the formula of every summary field, or of a single field."),
		mcp.WithString("field", mcp.Description("Optional field key such as 'recovery_rate'.")),
	), h.handleGetFieldDefinitions)

	return s
}

// StartMCPServer starts the Trendline MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
