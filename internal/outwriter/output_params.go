package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/internal/tabular"
	"github.com/huangsam/quizscale/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// errParquetParams is returned when parameters are requested as parquet.
var errParquetParams = errors.New("parquet output is not supported for scale parameters")

// WriteScaleParameters outputs the derived scale values, dispatching on the configured format.
func WriteScaleParameters(params *schema.ScaleParameters, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, params.Summary())
		}, "Wrote JSON")

	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"parameter", "value"}, func(cw *csv.Writer) error {
				for _, kv := range parameterRows(params, fmtFloat) {
					if err := cw.Write(kv); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")

	case schema.XLSXOut:
		outputFile := cfg.OutputFile
		if outputFile == "" {
			outputFile = defaultExportName("scale_parameters", ".xlsx")
		}
		return writeWithFile(outputFile, func(w io.Writer) error {
			var rows [][]any
			for _, kv := range parameterRows(params, fmtFloat) {
				rows = append(rows, []any{kv[0], kv[1]})
			}
			return tabular.WriteXLSX(w, "Scale", []string{"parameter", "value"}, rows)
		}, "Wrote workbook")

	case schema.ParquetOut:
		return errParquetParams

	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeParametersTable(w, params, cfg, fmtFloat)
		}, "Wrote table")
	}
}

// parameterRows lists the summary as name/value pairs, weights last.
func parameterRows(params *schema.ScaleParameters, fmtFloat func(float64) string) [][]string {
	s := params.Summary()
	mode := "uniform"
	if s.UseWeightedQuestions {
		mode = "weighted"
	}
	rows := [][]string{
		{"original_max", fmtFloat(s.OriginalMax)},
		{"target_max", fmtFloat(s.TargetMax)},
		{"original_question_value", fmtFloat(s.OriginalQuestionValue)},
		{"mode", mode},
		{"total_questions", fmtFloat(s.TotalQuestions)},
		{"new_question_value", fmtFloat(s.NewQuestionValue)},
		{"uniform_factor", fmtFloat(s.UniformFactor)},
		{"calculation_check", contract.GetPlainLabel(s.Calculation.Passed)},
	}
	for _, share := range s.Weights {
		rows = append(rows,
			[]string{fmt.Sprintf("q%d_weight", share.QuestionID), fmtFloat(share.Weight)},
			[]string{fmt.Sprintf("q%d_max", share.QuestionID), fmtFloat(share.ConvertedMax)},
		)
	}
	return rows
}

// writeParametersTable renders the summary, the weight table and the calculation check.
func writeParametersTable(w io.Writer, params *schema.ScaleParameters, cfg *contract.Config, fmtFloat func(float64) string) error {
	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}
	s := params.Summary()

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Parameter", "Value"})
	rows := [][]string{
		{"Original max", fmtFloat(s.OriginalMax)},
		{"Target max", fmtFloat(s.TargetMax)},
		{"Points per question", fmtFloat(s.OriginalQuestionValue)},
		{"Total questions", fmtFloat(s.TotalQuestions)},
		{"New question value", fmtFloat(s.NewQuestionValue)},
		{"Uniform factor", fmtFloat(s.UniformFactor)},
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if s.UseWeightedQuestions {
		if err := writeWeightTable(w, params, fmtFloat); err != nil {
			return err
		}
	}

	calc := s.Calculation
	if _, err := fmt.Fprintf(w, "Calculation check: %s (difference %g, tolerance %g)\n",
		label(calc.Passed), calc.Difference, calc.Tolerance); err != nil {
		return err
	}
	if calc.FractionalQuestions {
		if _, err := fmt.Fprintln(w, "Note: original max is not a multiple of the question value"); err != nil {
			return err
		}
	}
	return nil
}

// writeWeightTable renders weight, share of total and new max per configured question.
func writeWeightTable(w io.Writer, params *schema.ScaleParameters, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Question", "Weight", "% of Total", "New Max"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, share := range params.WeightTable() {
		data = append(data, []string{
			fmt.Sprintf("Q%d", share.QuestionID),
			fmtFloat(share.Weight),
			fmtFloat(share.Percent) + "%",
			fmtFloat(share.ConvertedMax),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Total weight: %s\n", fmtFloat(params.TotalWeight()))
	return err
}
