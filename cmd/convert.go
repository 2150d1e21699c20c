package cmd

import (
	"github.com/huangsam/quizscale/core"
	"github.com/huangsam/quizscale/internal/contract"
	"github.com/spf13/cobra"
)

// convertCmd converts one quiz export.
var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a quiz export to a new scale and verify every student",
	Long: `Read a quiz export (CSV or XLSX), rescale each student's total and per-question
scores, and verify the result twice:

- Calculation check: total questions × new question value equals the target max
- Reconciliation: each converted total equals the sum of its converted questions

Question columns follow the {n}_Response / {n}_Score convention. Columns with a
non-numeric prefix are skipped with a warning.

Examples:
  # Rescale a 15 point quiz (5 questions worth 3) to 10 points
  quizscale convert week1.csv --original-max 15 --target-max 10 --question-value 3

  # Weighted questions, exported to a workbook
  quizscale convert week1.xlsx --original-max 15 --target-max 100 --question-value 3 \
    --weighted --weights "1:2,2:1,3:1,4:1,5:1" --output xlsx

  # Fail a CI step when anything does not reconcile
  quizscale convert week1.csv --strict --output json --output-file week1.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteConvert(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot convert scores", err)
		}
	},
}
