package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/trendline/core"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/loader"
	"github.com/huangsam/trendline/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// inlineDatasetName names a series passed through the points argument.
const inlineDatasetName = "inline"

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// datasetFor resolves the series of a request: inline points first, then the
// input path, then whatever the server was started with.
func (h *toolHandler) datasetFor(cfg *contract.Config, request mcp.CallToolRequest) (*schema.Dataset, error) {
	if name := request.GetString("name", ""); name != "" {
		cfg.DatasetName = name
	}

	var dataset *schema.Dataset
	if points := request.GetString("points", ""); points != "" {
		decoded, err := loader.Decode(strings.NewReader(points), schema.JSONFormat)
		if err != nil {
			return nil, err
		}
		if err := decoded.Points.Validate(); err != nil {
			return nil, fmt.Errorf("invalid series: %w", err)
		}
		if decoded.Name == "" {
			decoded.Name = inlineDatasetName
		}
		dataset = decoded
	} else {
		if p := request.GetString("input", ""); p != "" {
			cfg.InputPath = p
			cfg.InputFormat = schema.AutoFormat
		}
		loaded, err := loader.Load(cfg.InputPath, cfg.InputFormat)
		if err != nil {
			return nil, err
		}
		dataset = loaded
	}

	if cfg.DatasetName != "" {
		dataset.Name = cfg.DatasetName
	}
	return dataset, nil
}

func (h *toolHandler) handleDeriveMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("pivot", ""); p != "" {
		cfg.Pivot = p
	}
	if m := request.GetString("marker", ""); m != "" {
		cfg.Marker = m
	}
	if v := request.GetString("view", ""); v != "" {
		view := schema.ReportView(strings.ToLower(v))
		if _, ok := schema.ValidReportViews[view]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid view '%s'. must be full, summary, recovery, quarterly", v)), nil
		}
		cfg.View = view
		cfg.Fields = schema.GetViewFields(view)
	}

	dataset, err := h.datasetFor(cfg, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot load series: %v", err)), nil
	}

	report, err := core.RunReport(core.WithSuppressHeader(ctx), cfg, h.mgr, dataset)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("derivation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetQuarterlyAverages(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	dataset, err := h.datasetFor(cfg, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot load series: %v", err)), nil
	}

	result, err := core.BuildQuarters(dataset)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("quarterly averages failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetFieldDefinitions(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var payload any = core.GetFieldsModel()
	if f := request.GetString("field", ""); f != "" {
		def, ok := core.FieldDefinition(schema.FieldKey(strings.ToLower(f)))
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown field '%s'", f)), nil
		}
		payload = def
	}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
