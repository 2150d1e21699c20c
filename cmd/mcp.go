package cmd

import (
	"github.com/huangsam/quizscale/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the quizscale MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents convert quiz exports and
inspect scales via the convert_scores and describe_scale tools.

Scale flags given here become defaults for every tool call.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
