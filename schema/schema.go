// Package schema has configs, models and shared types for all parts of quizscale.
package schema

import (
	"maps"
	"slices"
	"time"
)

// QuestionID is the join key between a question's response, original score,
// weight and converted score. Valid ids are positive.
type QuestionID int

// StudentIdentity holds the identity columns of one input row.
// Team and Email are optional and empty when absent.
type StudentIdentity struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Team        string `json:"team,omitempty"`
	Email       string `json:"email,omitempty"`
}

// StudentRecord is one student's row on the original scale.
type StudentRecord struct {
	StudentIdentity
	OriginalTotalScore float64                `json:"original_total_score"`
	Responses          map[QuestionID]string  `json:"responses,omitempty"`
	QuestionScores     map[QuestionID]float64 `json:"question_scores,omitempty"`
}

// QuestionIDs returns the ids present in either the responses or the scores, ascending.
func (r StudentRecord) QuestionIDs() []QuestionID {
	seen := make(map[QuestionID]struct{}, len(r.QuestionScores))
	for id := range r.Responses {
		seen[id] = struct{}{}
	}
	for id := range r.QuestionScores {
		seen[id] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// QuestionScoreSum sums the per-question original scores.
func (r StudentRecord) QuestionScoreSum() float64 {
	sum := 0.0
	for _, s := range r.QuestionScores {
		sum += s
	}
	return sum
}

// ConvertedRecord is a StudentRecord after conversion to the target scale.
type ConvertedRecord struct {
	StudentRecord
	ConvertedTotalScore     float64                `json:"converted_total_score"`
	ConvertedQuestionScores map[QuestionID]float64 `json:"converted_question_scores,omitempty"`
}

// ConvertedQuestionSum sums the converted per-question scores.
func (r ConvertedRecord) ConvertedQuestionSum() float64 {
	sum := 0.0
	for _, s := range r.ConvertedQuestionScores {
		sum += s
	}
	return sum
}

// Row is one input row keyed by column name.
type Row map[string]string

// Get returns the raw cell value of a column and whether the column exists.
// Callers trim as needed.
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Sheet is an ordered sequence of input rows with their column names.
type Sheet struct {
	Name    string
	Source  string
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the sheet carries the given column.
func (s Sheet) HasColumn(column string) bool {
	return slices.Contains(s.Columns, column)
}

// RecordReconciliation is the per-record outcome of reconciliation.
type RecordReconciliation struct {
	Index          int     `json:"index"`
	StudentID      string  `json:"student_id"`
	StudentName    string  `json:"student_name"`
	QuestionSum    float64 `json:"question_sum"`
	ConvertedTotal float64 `json:"converted_total"`
	Difference     float64 `json:"difference"`
	Passed         bool    `json:"passed"`
}

// ReconciliationReport summarizes reconciliation over a batch.
type ReconciliationReport struct {
	Tolerance float64                `json:"tolerance"`
	Passed    bool                   `json:"passed"`
	Failures  int                    `json:"failures"`
	Records   []RecordReconciliation `json:"records"`
}

// Failed returns only the records that did not reconcile.
func (r ReconciliationReport) Failed() []RecordReconciliation {
	var out []RecordReconciliation
	for _, rec := range r.Records {
		if !rec.Passed {
			out = append(out, rec)
		}
	}
	return out
}

// ConversionResult carries everything one conversion produced.
type ConversionResult struct {
	RunID          string               `json:"run_id"`
	QuizName       string               `json:"quiz_name"`
	SourceFile     string               `json:"source_file,omitempty"`
	SheetName      string               `json:"sheet,omitempty"`
	Parameters     *ScaleParameters     `json:"parameters"`
	Calculation    CalculationCheck     `json:"calculation"`
	Reconciliation ReconciliationReport `json:"reconciliation"`
	QuestionIDs    []QuestionID         `json:"question_ids"`
	Records        []ConvertedRecord    `json:"-"`
	Rows           []FlatRow            `json:"rows"`
	Warnings       []string             `json:"warnings,omitempty"`
	StartedAt      time.Time            `json:"started_at"`
	Duration       time.Duration        `json:"-"`
}

// HasMismatch reports whether either soft check failed.
func (r *ConversionResult) HasMismatch() bool {
	return !r.Calculation.Passed || !r.Reconciliation.Passed
}
