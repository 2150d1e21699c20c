package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/huangsam/quizscale/core"
	"github.com/huangsam/quizscale/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// scaleOverrides reads the shared scale arguments of a request.
func scaleOverrides(request mcp.CallToolRequest) (contract.ScaleOverrides, error) {
	o := contract.ScaleOverrides{
		OriginalMax:   floatArgument(request, "original_max"),
		TargetMax:     floatArgument(request, "target_max"),
		QuestionValue: floatArgument(request, "question_value"),
	}
	if _, ok := request.GetArguments()["weighted"]; ok {
		weighted := request.GetBool("weighted", false)
		o.Weighted = &weighted
	}
	if w := request.GetString("weights", ""); w != "" {
		weights, err := contract.ParseWeightsInput(w)
		if err != nil {
			return o, err
		}
		o.Weights = weights
	}
	return o, nil
}

// floatArgument returns nil when key was not sent, so an explicit 0 reaches validation.
func floatArgument(request mcp.CallToolRequest, key string) *float64 {
	if _, ok := request.GetArguments()[key]; !ok {
		return nil
	}
	v := request.GetFloat(key, 0)
	return &v
}

func (h *toolHandler) handleConvertScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()

	path := request.GetString("file_path", "")
	if path == "" {
		return mcp.NewToolResultError("file_path is required"), nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid file_path: %v", err)), nil
	}
	cfg.InputPath = absPath
	cfg.QuizName = request.GetString("quiz_name", "")
	cfg.Sheet = request.GetString("sheet", cfg.Sheet)
	cfg.Strict = request.GetBool("strict", cfg.Strict)

	overrides, err := scaleOverrides(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid weights: %v", err)), nil
	}
	if err := contract.RevalidateScale(cfg, overrides); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid scale parameters: %v", err)), nil
	}

	result, err := core.ConvertFile(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("conversion failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	if err := core.StrictCheck(cfg, result); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%v\n%s", err, jsonData)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleDescribeScale(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()

	overrides, err := scaleOverrides(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid weights: %v", err)), nil
	}
	if err := contract.RevalidateScale(cfg, overrides); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid scale parameters: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(cfg.Params.Summary(), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
