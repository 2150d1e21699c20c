package cmd

import (
	"github.com/huangsam/quizscale/core"
	"github.com/huangsam/quizscale/internal/contract"
	"github.com/spf13/cobra"
)

// paramsCmd previews a scale without reading any input.
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Preview the derived values of a scale",
	Long: `Show the values derived from the scale flags before converting anything:
total questions, new question value, uniform factor, the weight table and the
calculation check.

Examples:
  quizscale params --original-max 15 --target-max 10 --question-value 3
  quizscale params --original-max 10 --target-max 100 --question-value 2 --weighted --weights "1:2,2:1"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteParams(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot describe scale", err)
		}
	},
}
