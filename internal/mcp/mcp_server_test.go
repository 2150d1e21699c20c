package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/quizscale/internal/contract"
	mcp_internal "github.com/huangsam/quizscale/internal/mcp"
	"github.com/huangsam/quizscale/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quizCSV = `Team,Student Name,First Name,Last Name,Email Address,Student ID,Score,1_Response,1_Score,2_Response,2_Score
Red,Ada Lovelace,Ada,Lovelace,ada@example.com,S1,6,A,3,B,3
Blue,Alan Turing,Alan,Turing,,S2,3,A,3,C,0
`

func callTool(t *testing.T, baseCfg *contract.Config, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(baseCfg, nil)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func writeQuiz(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "week1.csv")
	require.NoError(t, os.WriteFile(path, []byte(quizCSV), 0o600))
	return path
}

func TestConvertScores(t *testing.T) {
	res := callTool(t, &contract.Config{}, "convert_scores", map[string]any{
		"file_path":      writeQuiz(t),
		"original_max":   6.0,
		"target_max":     10.0,
		"question_value": 3.0,
	})
	require.False(t, res.IsError, resultText(t, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	assert.Equal(t, "week1", decoded["quiz_name"])
	rows, ok := decoded["rows"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 2)
	first, ok := rows[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 10.0, first["Converted Score"])
	assert.Equal(t, 5.0, first["Q1 Converted Score"])
}

func TestConvertScores_UsesBaseScale(t *testing.T) {
	params, err := schema.NewScaleParameters(6, 100, 3, nil, false)
	require.NoError(t, err)

	res := callTool(t, &contract.Config{Params: params}, "convert_scores", map[string]any{
		"file_path": writeQuiz(t),
		"quiz_name": "Week One",
	})
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), `"quiz_name": "Week One"`)
	assert.Contains(t, resultText(t, res), `"Converted Score": 50`)
}

func TestConvertScores_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		contains string
	}{
		{"missing file", map[string]any{}, "file_path is required"},
		{"missing scale", map[string]any{"file_path": "quiz.csv"}, "invalid scale parameters"},
		{"bad weights", map[string]any{"file_path": "quiz.csv", "weights": "1=2"}, "invalid weights"},
		{
			"unreadable file",
			map[string]any{"file_path": "/nonexistent/quiz.csv", "original_max": 6.0, "target_max": 10.0, "question_value": 3.0},
			"conversion failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, &contract.Config{}, "convert_scores", tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.contains)
		})
	}
}

func TestConvertScores_Strict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.csv")
	// Total score disagrees with the question scores.
	content := "Student Name,First Name,Last Name,Student ID,Score,1_Score\nAda Lovelace,Ada,Lovelace,S1,6,3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	args := map[string]any{"file_path": path, "original_max": 6.0, "target_max": 10.0, "question_value": 3.0}
	res := callTool(t, &contract.Config{}, "convert_scores", args)
	assert.False(t, res.IsError, "mismatches are reported, not fatal")
	assert.Contains(t, resultText(t, res), `"warnings"`)

	args["strict"] = true
	res = callTool(t, &contract.Config{}, "convert_scores", args)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), schema.ErrConversionMismatch.Error())
}

func TestDescribeScale(t *testing.T) {
	res := callTool(t, &contract.Config{}, "describe_scale", map[string]any{
		"original_max":   10.0,
		"target_max":     100.0,
		"question_value": 2.0,
		"weighted":       true,
		"weights":        "1:2,2:1,3:1",
	})
	require.False(t, res.IsError, resultText(t, res))

	var summary schema.ScaleSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &summary))
	assert.Equal(t, 5.0, summary.TotalQuestions)
	assert.True(t, summary.UseWeightedQuestions)
	require.Len(t, summary.Weights, 3)
	assert.InDelta(t, 50.0, summary.Weights[0].ConvertedMax, 1e-9)
	assert.True(t, summary.Calculation.Passed)
}

func TestDescribeScale_Invalid(t *testing.T) {
	res := callTool(t, &contract.Config{}, "describe_scale", map[string]any{
		"original_max":   10.0,
		"target_max":     -1.0,
		"question_value": 2.0,
	})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "invalid scale parameters")
}

func TestScaleTools_ExplicitZeroOverBase(t *testing.T) {
	params, err := schema.NewScaleParameters(6, 10, 3, nil, false)
	require.NoError(t, err)
	base := &contract.Config{Params: params}

	for _, key := range []string{"original_max", "target_max", "question_value"} {
		t.Run(key, func(t *testing.T) {
			res := callTool(t, base, "describe_scale", map[string]any{key: 0.0})
			assert.True(t, res.IsError, "a supplied zero must not fall back to the base scale")
			assert.Contains(t, resultText(t, res), schema.ErrInvalidParameter.Error())
		})
	}

	res := callTool(t, base, "convert_scores", map[string]any{"file_path": writeQuiz(t), "target_max": 0.0})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "invalid scale parameters")
}

func TestDescribeScale_JSONWeights(t *testing.T) {
	res := callTool(t, &contract.Config{}, "describe_scale", map[string]any{
		"original_max":   6.0,
		"target_max":     30.0,
		"question_value": 3.0,
		"weighted":       true,
		"weights":        `{"1": 2, "2": 1}`,
	})
	require.False(t, res.IsError, resultText(t, res))

	var summary schema.ScaleSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &summary))
	require.Len(t, summary.Weights, 2)
	assert.InDelta(t, 20.0, summary.Weights[0].ConvertedMax, 1e-9)
	assert.InDelta(t, 10.0, summary.Weights[1].ConvertedMax, 1e-9)
}
