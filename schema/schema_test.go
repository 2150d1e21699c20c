package schema_test

import (
	"testing"

	"github.com/huangsam/quizscale/schema"
	"github.com/stretchr/testify/assert"
)

func TestStudentRecord_QuestionIDs(t *testing.T) {
	rec := schema.StudentRecord{
		Responses:      map[schema.QuestionID]string{3: "c", 1: "a"},
		QuestionScores: map[schema.QuestionID]float64{2: 1, 3: 1},
	}
	assert.Equal(t, []schema.QuestionID{1, 2, 3}, rec.QuestionIDs())
	assert.Equal(t, 2.0, rec.QuestionScoreSum())
}

func TestConvertedRecord_ConvertedQuestionSum(t *testing.T) {
	rec := schema.ConvertedRecord{
		ConvertedQuestionScores: map[schema.QuestionID]float64{1: 2, 2: 0.5},
	}
	assert.Equal(t, 2.5, rec.ConvertedQuestionSum())
}

func TestReconciliationReport_Failed(t *testing.T) {
	report := schema.ReconciliationReport{
		Records: []schema.RecordReconciliation{
			{Index: 0, Passed: true},
			{Index: 1, Passed: false},
			{Index: 2, Passed: false},
		},
	}
	failed := report.Failed()
	assert.Len(t, failed, 2)
	assert.Equal(t, 1, failed[0].Index)
}

func TestSheet_HasColumn(t *testing.T) {
	sheet := schema.Sheet{Columns: []string{"Student ID", "Score"}}
	assert.True(t, sheet.HasColumn("Score"))
	assert.False(t, sheet.HasColumn("Team"))
}

func TestConversionResult_HasMismatch(t *testing.T) {
	r := &schema.ConversionResult{
		Calculation:    schema.CalculationCheck{Passed: true},
		Reconciliation: schema.ReconciliationReport{Passed: true},
	}
	assert.False(t, r.HasMismatch())

	r.Reconciliation.Passed = false
	assert.True(t, r.HasMismatch())
}

func TestRow_Get(t *testing.T) {
	row := schema.Row{"Score": " 6 "}

	v, ok := row.Get("Score")
	assert.True(t, ok)
	assert.Equal(t, " 6 ", v, "cells are returned as read")

	_, ok = row.Get("Team")
	assert.False(t, ok)
}
