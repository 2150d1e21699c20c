// Package parquet provides data structures and functions for exporting quizscale
// runs and converted scores to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/quizscale/schema"
	"github.com/parquet-go/parquet-go"
)

// ConversionRun maps to the quizscale_conversion_runs table.
type ConversionRun struct {
	RunID                 int64      `parquet:"run_id,snappy"`
	RunUUID               string     `parquet:"run_uuid,snappy"`
	QuizName              string     `parquet:"quiz_name,snappy"`
	SourceFile            *string    `parquet:"source_file,optional,snappy"`
	OriginalMax           float64    `parquet:"original_max,snappy"`
	TargetMax             float64    `parquet:"target_max,snappy"`
	OriginalQuestionValue float64    `parquet:"original_question_value,snappy"`
	UseWeighted           bool       `parquet:"use_weighted,snappy"`
	StartTime             time.Time  `parquet:"start_time,snappy"`
	EndTime               *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs         *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalStudents         *int32     `parquet:"total_students,optional,snappy"`
	Reconciled            *bool      `parquet:"reconciled,optional,snappy"`

	// ConfigParams is the JSON-encoded configuration of the run
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// QuestionWeight maps to the quizscale_question_weights table.
type QuestionWeight struct {
	RunID        int64   `parquet:"run_id,snappy"`
	QuestionID   int32   `parquet:"question_id,snappy"`
	Weight       float64 `parquet:"weight,snappy"`
	ConvertedMax float64 `parquet:"converted_max,snappy"`
}

// StudentScore maps to the quizscale_student_scores table.
type StudentScore struct {
	RunID               int64   `parquet:"run_id,snappy"`
	RowIndex            int32   `parquet:"row_index,snappy"`
	StudentID           string  `parquet:"student_id,snappy"`
	StudentName         string  `parquet:"student_name,snappy"`
	FirstName           string  `parquet:"first_name,snappy"`
	LastName            string  `parquet:"last_name,snappy"`
	Team                *string `parquet:"team,optional,snappy"`
	Email               *string `parquet:"email,optional,snappy"`
	OriginalTotalScore  float64 `parquet:"original_total_score,snappy"`
	ConvertedTotalScore float64 `parquet:"converted_total_score,snappy"`
	QuestionSum         float64 `parquet:"question_sum,snappy"`
	Difference          float64 `parquet:"difference,snappy"`
	Reconciled          bool    `parquet:"reconciled,snappy"`
}

// QuestionScore maps to the quizscale_question_scores table.
type QuestionScore struct {
	RunID          int64    `parquet:"run_id,snappy"`
	RowIndex       int32    `parquet:"row_index,snappy"`
	StudentID      string   `parquet:"student_id,snappy"`
	QuestionID     int32    `parquet:"question_id,snappy"`
	Response       *string  `parquet:"response,optional,snappy"`
	OriginalScore  *float64 `parquet:"original_score,optional,snappy"`
	ConvertedScore *float64 `parquet:"converted_score,optional,snappy"`
}

// ScoreRow is the long form of one projected result row: one row per student and question.
// A student without question columns yields a single row whose question fields are null.
type ScoreRow struct {
	RunUUID                string   `parquet:"run_uuid,snappy"`
	QuizName               string   `parquet:"quiz_name,snappy"`
	RowIndex               int32    `parquet:"row_index,snappy"`
	Team                   *string  `parquet:"team,optional,snappy"`
	StudentName            string   `parquet:"student_name,snappy"`
	FirstName              string   `parquet:"first_name,snappy"`
	LastName               string   `parquet:"last_name,snappy"`
	Email                  *string  `parquet:"email,optional,snappy"`
	StudentID              string   `parquet:"student_id,snappy"`
	OriginalScore          float64  `parquet:"original_score,snappy"`
	ConvertedScore         float64  `parquet:"converted_score,snappy"`
	QuestionID             *int32   `parquet:"question_id,optional,snappy"`
	Response               *string  `parquet:"response,optional,snappy"`
	OriginalQuestionScore  *float64 `parquet:"original_question_score,optional,snappy"`
	ConvertedQuestionScore *float64 `parquet:"converted_question_score,optional,snappy"`
}

// Write encodes rows to w using the schema inferred from T's struct tags.
func Write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ConvertConversionRunRecords converts stored runs for Parquet export.
func ConvertConversionRunRecords(records []schema.ConversionRunRecord) []ConversionRun {
	result := make([]ConversionRun, len(records))
	for i, record := range records {
		result[i] = ConversionRun{
			RunID:                 record.RunID,
			RunUUID:               record.RunUUID,
			QuizName:              record.QuizName,
			SourceFile:            record.SourceFile,
			OriginalMax:           record.OriginalMax,
			TargetMax:             record.TargetMax,
			OriginalQuestionValue: record.OriginalQuestionValue,
			UseWeighted:           record.UseWeighted,
			StartTime:             record.StartTime,
			EndTime:               record.EndTime,
			RunDurationMs:         record.RunDurationMs,
			TotalStudents:         record.TotalStudents,
			Reconciled:            record.Reconciled,
			ConfigParams:          record.ConfigParams,
		}
	}
	return result
}

// ConvertQuestionWeightRecords converts stored weights for Parquet export.
func ConvertQuestionWeightRecords(records []schema.QuestionWeightRecord) []QuestionWeight {
	result := make([]QuestionWeight, len(records))
	for i, record := range records {
		result[i] = QuestionWeight(record)
	}
	return result
}

// ConvertStudentScoreRecords converts stored student totals for Parquet export.
func ConvertStudentScoreRecords(records []schema.StudentScoreRecord) []StudentScore {
	result := make([]StudentScore, len(records))
	for i, record := range records {
		result[i] = StudentScore(record)
	}
	return result
}

// ConvertQuestionScoreRecords converts stored question scores for Parquet export.
func ConvertQuestionScoreRecords(records []schema.QuestionScoreRecord) []QuestionScore {
	result := make([]QuestionScore, len(records))
	for i, record := range records {
		result[i] = QuestionScore(record)
	}
	return result
}

// ConvertResultRows flattens a conversion result into long-form score rows.
func ConvertResultRows(result *schema.ConversionResult) []ScoreRow {
	var rows []ScoreRow
	for i, row := range result.Rows {
		base := ScoreRow{
			RunUUID:        result.RunID,
			QuizName:       result.QuizName,
			RowIndex:       int32(i),
			Team:           schema.StringPtr(row.Team),
			StudentName:    row.StudentName,
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			Email:          schema.StringPtr(row.Email),
			StudentID:      row.StudentID,
			OriginalScore:  row.OriginalScore,
			ConvertedScore: row.ConvertedScore,
		}
		if len(row.Questions) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, q := range row.Questions {
			r := base
			id := int32(q.ID)
			r.QuestionID = &id
			r.Response = q.Response
			r.OriginalQuestionScore = q.OriginalScore
			r.ConvertedQuestionScore = q.ConvertedScore
			rows = append(rows, r)
		}
	}
	return rows
}
