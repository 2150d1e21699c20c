package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/internal/parquet"
)

// ExecuteRunsExport exports the run history of the global store to Parquet files.
func ExecuteRunsExport(outputFile string) error {
	return exportRuns(Manager.GetRunStore(), outputFile)
}

func exportRuns(store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not enabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no conversion runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total conversion runs: %d\n", status.TotalRuns)
	fmt.Printf("Total student records: %d\n", status.TableSizes[studentScoresTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve conversion runs: %w", err)
	}
	weights, err := store.GetAllQuestionWeights()
	if err != nil {
		return fmt.Errorf("failed to retrieve question weights: %w", err)
	}
	students, err := store.GetAllStudentScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve student scores: %w", err)
	}
	questions, err := store.GetAllQuestionScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve question scores: %w", err)
	}

	exports := []struct {
		label string
		file  string
		count int
		write func(string) error
	}{
		{"conversion runs", outputFile + ".conversion_runs.parquet", len(runs), func(path string) error {
			return parquet.WriteFile(parquet.ConvertConversionRunRecords(runs), path)
		}},
		{"question weights", outputFile + ".question_weights.parquet", len(weights), func(path string) error {
			return parquet.WriteFile(parquet.ConvertQuestionWeightRecords(weights), path)
		}},
		{"student scores", outputFile + ".student_scores.parquet", len(students), func(path string) error {
			return parquet.WriteFile(parquet.ConvertStudentScoreRecords(students), path)
		}},
		{"question scores", outputFile + ".question_scores.parquet", len(questions), func(path string) error {
			return parquet.WriteFile(parquet.ConvertQuestionScoreRecords(questions), path)
		}},
	}

	for _, e := range exports {
		if err := e.write(e.file); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.label, err)
		}
		fmt.Printf("Exported %d %s to: %s\n", e.count, e.label, e.file)
	}

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
