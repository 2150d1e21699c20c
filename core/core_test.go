package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/internal/iocache"
	"github.com/huangsam/quizscale/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeReader returns a fixed sheet or error.
type fakeReader struct {
	sheet schema.Sheet
	err   error
}

func (f *fakeReader) ReadSheet(_ context.Context, _ string, _ string) (schema.Sheet, error) {
	return f.sheet, f.err
}

// fakeWriter records what it was asked to write.
type fakeWriter struct {
	result *schema.ConversionResult
	params *schema.ScaleParameters
}

func (f *fakeWriter) WriteConversion(result *schema.ConversionResult, _ *contract.Config) error {
	f.result = result
	return nil
}

func (f *fakeWriter) WriteParameters(params *schema.ScaleParameters, _ *contract.Config) error {
	f.params = params
	return nil
}

// scenarioSheet holds the two uniform scenario students.
func scenarioSheet() schema.Sheet {
	cols := []string{"1_Score", "2_Score", "3_Score", "4_Score", "5_Score"}
	return newSheet(cols,
		withCells(identityRow("A", "12"), map[string]string{"1_Score": "3", "2_Score": "3", "3_Score": "3", "4_Score": "3", "5_Score": "0"}),
		withCells(identityRow("B", "9"), map[string]string{"1_Score": "3", "2_Score": "0", "3_Score": "3", "4_Score": "3", "5_Score": "0"}),
	)
}

func TestRunConversion(t *testing.T) {
	params := mustParams(t, 15, 10, 3, nil, false)

	result, err := RunConversion(context.Background(), params, scenarioSheet(), "")
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "quiz", result.QuizName)
	assert.Equal(t, "Team Analysis", result.SheetName)
	assert.True(t, result.Calculation.Passed)
	assert.True(t, result.Reconciliation.Passed)
	assert.False(t, result.HasMismatch())
	assert.Empty(t, result.Warnings)
	assert.Equal(t, []schema.QuestionID{1, 2, 3, 4, 5}, result.QuestionIDs)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, 8.0, result.Rows[0].ConvertedScore)
	assert.Equal(t, 6.0, result.Rows[1].ConvertedScore)
	require.Len(t, result.Records, 2)
}

func TestRunConversion_Errors(t *testing.T) {
	_, err := RunConversion(context.Background(), nil, scenarioSheet(), "q")
	assert.ErrorIs(t, err, schema.ErrInvalidParameter)

	params := mustParams(t, 15, 10, 3, nil, false)
	_, err = RunConversion(context.Background(), params, schema.Sheet{Columns: []string{"Score"}}, "q")
	assert.ErrorIs(t, err, schema.ErrMissingColumns)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunConversion(ctx, params, scenarioSheet(), "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunConversion_Diagnostics(t *testing.T) {
	// 10 / 3 leaves a fractional question count.
	params := mustParams(t, 10, 5, 3, nil, false)
	sheet := newSheet([]string{"1_Score"},
		withCells(identityRow("S1", "9"), map[string]string{"1_Score": "3"}),
	)

	result, err := RunConversion(context.Background(), params, sheet, "Fractional")
	require.NoError(t, err)
	assert.Equal(t, "Fractional", result.QuizName)
	assert.True(t, result.Calculation.FractionalQuestions)
	assert.False(t, result.Reconciliation.Passed)
	assert.True(t, result.HasMismatch())
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "not a multiple")
	assert.Contains(t, result.Warnings[1], "Student S1")
}

func TestExecuteConvert(t *testing.T) {
	cfg := &contract.Config{
		InputPath: "/tmp/quiz.xlsx",
		QuizName:  "quiz",
		Params:    mustParams(t, 15, 10, 3, nil, false),
		Output:    schema.JSONOut,
	}

	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.MatchedBy(func(p schema.RunParams) bool {
		return p.QuizName == "quiz" && p.SourceFile == "/tmp/quiz.xlsx" && p.RunUUID != ""
	})).Return(int64(7), nil)
	store.On("RecordStudent", int64(7), mock.AnythingOfType("schema.ConvertedRecord"), mock.AnythingOfType("schema.RecordReconciliation")).Return(nil).Times(2)
	store.On("EndRun", int64(7), mock.Anything, 2, true).Return(nil)

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)

	writer := &fakeWriter{}
	err := executeConvert(context.Background(), cfg, &fakeReader{sheet: scenarioSheet()}, mgr, writer)
	require.NoError(t, err)

	require.NotNil(t, writer.result)
	assert.Equal(t, "/tmp/quiz.xlsx", writer.result.SourceFile)
	mgr.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestExecuteConvert_NoStore(t *testing.T) {
	cfg := &contract.Config{Params: mustParams(t, 15, 10, 3, nil, false), Output: schema.CSVOut}

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRunStore").Return(nil)

	writer := &fakeWriter{}
	require.NoError(t, executeConvert(context.Background(), cfg, &fakeReader{sheet: scenarioSheet()}, mgr, writer))
	assert.NotNil(t, writer.result)
	mgr.AssertExpectations(t)
}

func TestExecuteConvert_Strict(t *testing.T) {
	sheet := newSheet([]string{"1_Score"},
		withCells(identityRow("S1", "15"), map[string]string{"1_Score": "3"}),
	)
	cfg := &contract.Config{Params: mustParams(t, 15, 10, 3, nil, false), Output: schema.JSONOut}

	writer := &fakeWriter{}
	require.NoError(t, executeConvert(context.Background(), cfg, &fakeReader{sheet: sheet}, nil, writer))

	cfg.Strict = true
	writer = &fakeWriter{}
	err := executeConvert(context.Background(), cfg, &fakeReader{sheet: sheet}, nil, writer)
	assert.ErrorIs(t, err, schema.ErrConversionMismatch)
	assert.NotNil(t, writer.result, "output is written before strict mode fails")
}

func TestExecuteConvert_Errors(t *testing.T) {
	writer := &fakeWriter{}

	err := executeConvert(context.Background(), &contract.Config{}, &fakeReader{}, nil, writer)
	assert.ErrorIs(t, err, ErrScaleRequired)

	cfg := &contract.Config{Params: mustParams(t, 15, 10, 3, nil, false), Output: schema.JSONOut}
	readErr := errors.New("boom")
	err = executeConvert(context.Background(), cfg, &fakeReader{err: readErr}, nil, writer)
	assert.ErrorIs(t, err, readErr)
	assert.Nil(t, writer.result)
}

func TestExecuteParams(t *testing.T) {
	writer := &fakeWriter{}
	assert.ErrorIs(t, executeParams(&contract.Config{}, writer), schema.ErrInvalidParameter)

	params := mustParams(t, 15, 10, 3, nil, false)
	require.NoError(t, executeParams(&contract.Config{Params: params}, writer))
	assert.Same(t, params, writer.params)
}

func TestPersistRun_BeginFails(t *testing.T) {
	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything).Return(int64(0), errors.New("db down"))

	params := mustParams(t, 15, 10, 3, nil, false)
	result, err := RunConversion(context.Background(), params, scenarioSheet(), "quiz")
	require.NoError(t, err)

	PersistRun(store, result, nil)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "RecordStudent", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPersistRun_NilStore(t *testing.T) {
	assert.NotPanics(t, func() { PersistRun(nil, &schema.ConversionResult{}, nil) })
}

func TestConvertFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "week2.csv")
	content := "Student Name,First Name,Last Name,Student ID,Score,1_Response,1_Score,2_Response,2_Score\n" +
		"Ada Lovelace,Ada,Lovelace,S1,6,A,3,B,3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := &contract.Config{InputPath: path, Params: mustParams(t, 6, 10, 3, nil, false)}
	result, err := ConvertFile(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "week2", result.QuizName)
	assert.Equal(t, path, result.SourceFile)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 10.0, result.Rows[0].ConvertedScore)

	_, err = ConvertFile(context.Background(), &contract.Config{InputPath: path}, nil)
	assert.ErrorIs(t, err, ErrScaleRequired)

	cfg.InputPath = filepath.Join(t.TempDir(), "missing.csv")
	_, err = ConvertFile(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStrictCheck(t *testing.T) {
	passed := &schema.ConversionResult{
		Calculation:    schema.CalculationCheck{Passed: true},
		Reconciliation: schema.ReconciliationReport{Passed: true},
	}
	failed := &schema.ConversionResult{
		Calculation:    schema.CalculationCheck{Passed: true},
		Reconciliation: schema.ReconciliationReport{Passed: false, Failures: 1},
		Records:        make([]schema.ConvertedRecord, 2),
	}

	assert.NoError(t, StrictCheck(&contract.Config{}, failed))
	assert.NoError(t, StrictCheck(&contract.Config{Strict: true}, passed))

	err := StrictCheck(&contract.Config{Strict: true}, failed)
	assert.ErrorIs(t, err, schema.ErrConversionMismatch)
	assert.Contains(t, err.Error(), "1 of 2 students")
}
