// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/quizscale/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scaleOptions are the tool arguments shared by every scale-aware tool.
func scaleOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("original_max", mcp.Description("Maximum score on the original scale (e.g. 15). Falls back to the server configuration.")),
		mcp.WithNumber("target_max", mcp.Description("Maximum score on the target scale (e.g. 10). Falls back to the server configuration.")),
		mcp.WithNumber("question_value", mcp.Description("Points per question on the original scale (e.g. 3). Falls back to the server configuration.")),
		mcp.WithBoolean("weighted", mcp.Description("Distribute the target scale by per-question weights.")),
		mcp.WithString("weights", mcp.Description("Per-question weights as 'question:weight' pairs, e.g. '1:2,2:1,3:1', or a JSON object like {\"1\":2,\"2\":1}.")),
	}
}

// NewMCPServer initializes and configures the quizscale MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Quiz Scale Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: convert_scores ---
	convertOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Convert quiz scores in a CSV or XLSX file to a new scale and verify the result."),
		mcp.WithString("file_path", mcp.Description("Path to the quiz export (.csv or .xlsx)."), mcp.Required()),
		mcp.WithString("quiz_name", mcp.Description("Quiz name recorded with the run. Defaults to the file name.")),
		mcp.WithString("sheet", mcp.Description("Worksheet to read from an xlsx file. Defaults to 'Team Analysis', then 'Student Analysis'.")),
		mcp.WithBoolean("strict", mcp.Description("Fail when any student does not reconcile.")),
	}, scaleOptions()...)
	s.AddTool(mcp.NewTool("convert_scores", convertOpts...), h.handleConvertScores)

	// --- 2. Tool: describe_scale ---
	describeOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Show the derived values of a scale: question count, new question value, weight table and calculation check."),
	}, scaleOptions()...)
	s.AddTool(mcp.NewTool("describe_scale", describeOpts...), h.handleDescribeScale)

	return s
}

// StartMCPServer starts the quizscale MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
