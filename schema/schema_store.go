package schema

import "time"

// RunStoreStatus represents the status of the run store.
type RunStoreStatus struct {
	Backend                string           `json:"backend"`
	Connected              bool             `json:"connected"`
	TotalRuns              int              `json:"total_runs"`
	LastRunID              int64            `json:"last_run_id"`
	LastRunTime            time.Time        `json:"last_run_time"`
	OldestRunTime          time.Time        `json:"oldest_run_time"`
	TotalStudentsConverted int              `json:"total_students_converted"`
	TableSizes             map[string]int64 `json:"table_sizes"`
}

// RunParams describes the run being started.
type RunParams struct {
	RunUUID      string
	QuizName     string
	SourceFile   string
	Parameters   *ScaleParameters
	StartTime    time.Time
	ConfigParams map[string]any
}

// ConversionRunRecord represents a row from the quizscale_conversion_runs table.
type ConversionRunRecord struct {
	RunID                 int64
	RunUUID               string
	QuizName              string
	SourceFile            *string
	OriginalMax           float64
	TargetMax             float64
	OriginalQuestionValue float64
	UseWeighted           bool
	StartTime             time.Time
	EndTime               *time.Time
	RunDurationMs         *int32
	TotalStudents         *int32
	Reconciled            *bool
	ConfigParams          *string
}

// QuestionWeightRecord represents a row from the quizscale_question_weights table.
type QuestionWeightRecord struct {
	RunID        int64
	QuestionID   int32
	Weight       float64
	ConvertedMax float64
}

// StudentScoreRecord represents a row from the quizscale_student_scores table.
type StudentScoreRecord struct {
	RunID               int64
	RowIndex            int32
	StudentID           string
	StudentName         string
	FirstName           string
	LastName            string
	Team                *string
	Email               *string
	OriginalTotalScore  float64
	ConvertedTotalScore float64
	QuestionSum         float64
	Difference          float64
	Reconciled          bool
}

// QuestionScoreRecord represents a row from the quizscale_question_scores table.
type QuestionScoreRecord struct {
	RunID          int64
	RowIndex       int32
	StudentID      string
	QuestionID     int32
	Response       *string
	OriginalScore  *float64
	ConvertedScore *float64
}
