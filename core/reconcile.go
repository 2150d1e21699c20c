package core

import (
	"math"

	"github.com/huangsam/quizscale/schema"
)

// ReconciliationTolerance bounds |sum(converted questions) - converted total| per record.
const ReconciliationTolerance = 1e-4

// Verify reports whether every record reconciles.
func Verify(records []schema.ConvertedRecord) bool {
	return Reconcile(records).Passed
}

// Reconcile checks each record's converted question sum against its converted total.
// Mismatches are reported, never returned as errors.
func Reconcile(records []schema.ConvertedRecord) schema.ReconciliationReport {
	report := schema.ReconciliationReport{
		Tolerance: ReconciliationTolerance,
		Passed:    true,
		Records:   make([]schema.RecordReconciliation, 0, len(records)),
	}
	for i, rec := range records {
		sum := rec.ConvertedQuestionSum()
		diff := math.Abs(sum - rec.ConvertedTotalScore)
		passed := diff < ReconciliationTolerance
		if !passed {
			report.Passed = false
			report.Failures++
		}
		report.Records = append(report.Records, schema.RecordReconciliation{
			Index:          i,
			StudentID:      rec.StudentID,
			StudentName:    rec.StudentName,
			QuestionSum:    sum,
			ConvertedTotal: rec.ConvertedTotalScore,
			Difference:     diff,
			Passed:         passed,
		})
	}
	return report
}
