// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/quizscale/schema"
)

// SheetReader loads quiz input into a column-addressed sheet.
// This allows the conversion pipeline to be tested without real files.
type SheetReader interface {
	// ReadSheet reads the file at path. For workbooks, sheet selects the
	// worksheet; an empty name picks the first known analysis sheet.
	ReadSheet(ctx context.Context, path string, sheet string) (schema.Sheet, error)
}

// StoreManager defines the interface for managing run stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking conversion runs and their scores.
type RunStore interface {
	// BeginRun creates a new conversion run and returns its unique ID
	BeginRun(run schema.RunParams) (int64, error)

	// RecordStudent stores the converted scores of one student
	RecordStudent(runID int64, rec schema.ConvertedRecord, check schema.RecordReconciliation) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalStudents int, reconciled bool) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// GetAllRuns retrieves all conversion runs
	GetAllRuns() ([]schema.ConversionRunRecord, error)

	// GetAllQuestionWeights retrieves all per-run question weights
	GetAllQuestionWeights() ([]schema.QuestionWeightRecord, error)

	// GetAllStudentScores retrieves all per-student totals
	GetAllStudentScores() ([]schema.StudentScoreRecord, error)

	// GetAllQuestionScores retrieves all per-question scores
	GetAllQuestionScores() ([]schema.QuestionScoreRecord, error)

	// Close closes the underlying connection
	Close() error
}

// ResultWriter renders conversion output in the configured format.
type ResultWriter interface {
	// WriteConversion writes converted rows and their diagnostics
	WriteConversion(result *schema.ConversionResult, cfg *Config) error

	// WriteParameters writes the derived scale values and weight table
	WriteParameters(params *schema.ScaleParameters, cfg *Config) error
}
