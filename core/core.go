// Package core has core logic for scale conversion, reconciliation and projection.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/internal/outwriter"
	"github.com/huangsam/quizscale/internal/tabular"
	"github.com/huangsam/quizscale/schema"
)

// ErrScaleRequired is returned when a command needs scale values that were not configured.
var ErrScaleRequired = fmt.Errorf("%w: --original-max, --target-max and --question-value are required", schema.ErrInvalidParameter)

// RunConversion extracts, converts, reconciles and projects one sheet.
// Soft check failures are reported in the result and its warnings.
func RunConversion(ctx context.Context, params *schema.ScaleParameters, sheet schema.Sheet, quizName string) (*schema.ConversionResult, error) {
	if params == nil {
		return nil, ErrScaleRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	records, ids, warnings, err := ExtractRecords(sheet)
	if err != nil {
		return nil, err
	}

	converted := Convert(records, params)
	report := Reconcile(converted)
	check := params.CheckCalculation()
	warnings = append(warnings, diagnosticWarnings(params, check, report)...)

	if quizName == "" && sheet.Source != "" {
		quizName = contract.QuizNameFromPath(sheet.Source)
	}

	return &schema.ConversionResult{
		RunID:          uuid.NewString(),
		QuizName:       quizName,
		SourceFile:     sheet.Source,
		SheetName:      sheet.Name,
		Parameters:     params,
		Calculation:    check,
		Reconciliation: report,
		QuestionIDs:    ids,
		Records:        converted,
		Rows:           Project(converted, ids),
		Warnings:       warnings,
		StartedAt:      start,
		Duration:       time.Since(start),
	}, nil
}

// diagnosticWarnings describes failed soft checks.
func diagnosticWarnings(params *schema.ScaleParameters, check schema.CalculationCheck, report schema.ReconciliationReport) []string {
	var warnings []string
	if check.FractionalQuestions {
		warnings = append(warnings, fmt.Sprintf("original max %g is not a multiple of question value %g (%g questions)",
			params.OriginalMax(), params.OriginalQuestionValue(), check.TotalQuestions))
	}
	if !check.Passed {
		warnings = append(warnings, fmt.Sprintf("calculation check failed: %g questions x %g = %g, expected %g",
			check.TotalQuestions, check.NewQuestionValue, check.Product, check.TargetMax))
	}
	for _, r := range report.Failed() {
		warnings = append(warnings, fmt.Sprintf("student %s (%s): question sum %.4f differs from converted total %.4f",
			r.StudentName, r.StudentID, r.QuestionSum, r.ConvertedTotal))
	}
	return warnings
}

// PersistRun stores a finished conversion. Store failures are logged, never fatal.
func PersistRun(store contract.RunStore, result *schema.ConversionResult, configParams map[string]any) {
	if store == nil || result == nil {
		return
	}
	runID, err := store.BeginRun(schema.RunParams{
		RunUUID:      result.RunID,
		QuizName:     result.QuizName,
		SourceFile:   result.SourceFile,
		Parameters:   result.Parameters,
		StartTime:    result.StartedAt,
		ConfigParams: configParams,
	})
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return
	}

	for i, rec := range result.Records {
		var check schema.RecordReconciliation
		if i < len(result.Reconciliation.Records) {
			check = result.Reconciliation.Records[i]
		}
		if err := store.RecordStudent(runID, rec, check); err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to record scores for %s", rec.StudentID), err)
		}
	}

	if err := store.EndRun(runID, time.Now(), len(result.Records), !result.HasMismatch()); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// ExecuteConvert converts the configured input file and writes the result.
// It serves as the main entry point for the 'convert' command.
func ExecuteConvert(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return executeConvert(ctx, cfg, tabular.NewFileReader(), mgr, outwriter.NewOutWriter())
}

func executeConvert(ctx context.Context, cfg *contract.Config, reader contract.SheetReader, mgr contract.StoreManager, writer contract.ResultWriter) error {
	if !cfg.HasScale() {
		return ErrScaleRequired
	}

	// Machine-readable output on stdout must stay clean
	if cfg.Output != schema.TextOut && cfg.OutputFile == "" {
		ctx = withSuppressHeader(ctx)
	}
	if !shouldSuppressHeader(ctx) {
		logConvertHeader(cfg)
	}

	sheet, err := reader.ReadSheet(ctx, cfg.InputPath, cfg.Sheet)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", cfg.InputPath, err)
	}

	result, err := ConvertSheet(ctx, cfg, sheet, mgr)
	if err != nil {
		return err
	}

	if err := writer.WriteConversion(result, cfg); err != nil {
		return err
	}

	for _, w := range result.Warnings {
		contract.LogWarn("Conversion", errors.New(w))
	}

	return StrictCheck(cfg, result)
}

// ConvertSheet converts an already loaded sheet and records the run.
// Nothing is written, so callers serialize the result themselves.
func ConvertSheet(ctx context.Context, cfg *contract.Config, sheet schema.Sheet, mgr contract.StoreManager) (*schema.ConversionResult, error) {
	result, err := RunConversion(ctx, cfg.Params, sheet, cfg.QuizName)
	if err != nil {
		return nil, err
	}
	if cfg.InputPath != "" {
		result.SourceFile = cfg.InputPath
	}
	if mgr != nil {
		PersistRun(mgr.GetRunStore(), result, ConfigParams(cfg))
	}
	return result, nil
}

// ConvertFile reads the configured input file and converts it.
func ConvertFile(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.ConversionResult, error) {
	if !cfg.HasScale() {
		return nil, ErrScaleRequired
	}
	sheet, err := tabular.NewFileReader().ReadSheet(ctx, cfg.InputPath, cfg.Sheet)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", cfg.InputPath, err)
	}
	return ConvertSheet(ctx, cfg, sheet, mgr)
}

// StrictCheck fails a conversion with soft check failures when strict mode is on.
func StrictCheck(cfg *contract.Config, result *schema.ConversionResult) error {
	if !cfg.Strict || !result.HasMismatch() {
		return nil
	}
	return fmt.Errorf("%w: %d of %d students failed reconciliation (calculation check passed: %t)",
		schema.ErrConversionMismatch, result.Reconciliation.Failures, len(result.Records), result.Calculation.Passed)
}

// ExecuteParams previews the derived scale values without any input file.
func ExecuteParams(_ context.Context, cfg *contract.Config) error {
	return executeParams(cfg, outwriter.NewOutWriter())
}

func executeParams(cfg *contract.Config, writer contract.ResultWriter) error {
	if !cfg.HasScale() {
		return ErrScaleRequired
	}
	return writer.WriteParameters(cfg.Params, cfg)
}

// ConfigParams captures the settings recorded alongside a run.
func ConfigParams(cfg *contract.Config) map[string]any {
	return map[string]any{
		"input_path": cfg.InputPath,
		"sheet":      cfg.Sheet,
		"strict":     cfg.Strict,
		"output":     string(cfg.Output),
		"precision":  cfg.Precision,
	}
}
