package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/internal/parquet"
	"github.com/huangsam/quizscale/internal/tabular"
	"github.com/huangsam/quizscale/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteConversionResult outputs a conversion, dispatching on the configured format.
func WriteConversionResult(result *schema.ConversionResult, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")

	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeConversionCSV(w, result, fmtFloat)
		}, "Wrote CSV")

	case schema.XLSXOut:
		outputFile := cfg.OutputFile
		if outputFile == "" {
			outputFile = defaultExportName(result.QuizName, ".xlsx")
		}
		return writeWithFile(outputFile, func(w io.Writer) error {
			return writeConversionXLSX(w, result)
		}, "Wrote workbook")

	case schema.ParquetOut:
		outputFile := cfg.OutputFile
		if outputFile == "" {
			outputFile = defaultExportName(result.QuizName, ".parquet")
		}
		return writeWithFile(outputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertResultRows(result))
		}, "Wrote Parquet")

	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeConversionTable(w, result, cfg, fmtFloat)
		}, "Wrote table")
	}
}

// writeConversionCSV writes one row per student in the stable export column order.
func writeConversionCSV(w io.Writer, result *schema.ConversionResult, fmtFloat func(float64) string) error {
	header := schema.FlatHeader(result.QuestionIDs)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range result.Rows {
			if err := cw.Write(row.Cells(header, fmtFloat)); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeConversionXLSX writes the projected rows to a single worksheet named after the quiz.
// Scores stay numeric so spreadsheets can compute on them.
func writeConversionXLSX(w io.Writer, result *schema.ConversionResult) error {
	header := schema.FlatHeader(result.QuestionIDs)
	rows := make([][]any, len(result.Rows))
	for i, row := range result.Rows {
		cells := make([]any, len(header))
		for j, col := range header {
			if v, ok := row.Lookup(col); ok {
				cells[j] = v
			}
		}
		rows[i] = cells
	}
	return tabular.WriteXLSX(w, result.QuizName, header, rows)
}

// writeConversionTable renders the per-student table followed by the check summary.
func writeConversionTable(w io.Writer, result *schema.ConversionResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}
	nameWidth := GetMaxNameWidth(cfg)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Student", "ID", "Team", "Original", "Converted", "Q Sum", "Check"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, row := range result.Rows {
		check := recordCheck(result, i)
		converted := fmtFloat(row.ConvertedScore)
		if !check.Passed && cfg.UseColors {
			converted = contract.MismatchColor.Sprint(converted)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(row.StudentName, nameWidth),
			row.StudentID,
			row.Team,
			fmtFloat(row.OriginalScore),
			converted,
			fmtFloat(check.QuestionSum),
			label(check.Passed),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if params := result.Parameters; params != nil && params.UseWeightedQuestions() {
		if err := writeWeightTable(w, params, fmtFloat); err != nil {
			return err
		}
	}

	calc := result.Calculation
	if _, err := fmt.Fprintf(w, "Calculation check: %s (%s questions × %s = %s, target %s)\n",
		label(calc.Passed), fmtFloat(calc.TotalQuestions), fmtFloat(calc.NewQuestionValue),
		fmtFloat(calc.Product), fmtFloat(calc.TargetMax)); err != nil {
		return err
	}
	rec := result.Reconciliation
	if _, err := fmt.Fprintf(w, "Reconciliation: %s (%d of %d students outside tolerance %g)\n",
		label(rec.Passed), rec.Failures, len(rec.Records), rec.Tolerance); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Converted %d students in %v. Run %s\n", len(result.Rows), result.Duration, result.RunID); err != nil {
		return err
	}
	return nil
}

// recordCheck returns the reconciliation outcome for row i.
// Rows without a matching check count as passed.
func recordCheck(result *schema.ConversionResult, i int) schema.RecordReconciliation {
	if i < len(result.Reconciliation.Records) {
		return result.Reconciliation.Records[i]
	}
	return schema.RecordReconciliation{Index: i, Passed: true}
}
