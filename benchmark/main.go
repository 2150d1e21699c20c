// Package main provides a performance benchmarking tool for the quizscale CLI.
// It generates synthetic quiz exports of increasing size, converts each one
// several times with and without run tracking, and writes the timings to CSV.
//
// Prerequisites:
// - quizscale binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated quiz files (default: a temp dir)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the averaged timings of one quiz size.
type BenchmarkResult struct {
	Students    int
	Questions   int
	NoStoreTime string
	StoreTime   string
	XLSXTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir       string
	Timeout       time.Duration
	Runs          int
	QuestionValue int
	Sizes         [][2]int // students, questions
}

func main() {
	workDir := ""
	switch len(os.Args) {
	case 1:
		dir, err := os.MkdirTemp("", "quizscale-bench-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	case 2:
		workDir = os.Args[1]
	default:
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:       workDir,
		Timeout:       2 * time.Minute,
		Runs:          4,
		QuestionValue: 3,
		Sizes:         [][2]int{{100, 10}, {1000, 20}, {10000, 40}, {50000, 40}},
	}

	if _, err := exec.LookPath("quizscale"); err != nil {
		fmt.Printf("Prerequisites check failed: quizscale binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks generates one quiz per size and times its conversion.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, %d runs each\n", len(config.Sizes), config.Timeout, config.Runs)

	for _, size := range config.Sizes {
		students, questions := size[0], size[1]
		path := filepath.Join(config.WorkDir, fmt.Sprintf("quiz_%d_%d.csv", students, questions))
		if err := writeQuiz(path, students, questions, config.QuestionValue); err != nil {
			fmt.Printf("Failed to generate %s: %v\n", path, err)
			continue
		}
		fmt.Printf("Benchmarking %d students x %d questions\n", students, questions)

		scale := []string{
			"--original-max", strconv.Itoa(questions * config.QuestionValue),
			"--target-max", "100",
			"--question-value", strconv.Itoa(config.QuestionValue),
		}
		jsonOut := []string{"--output", "json", "--output-file", filepath.Join(config.WorkDir, "out.json")}
		xlsxOut := []string{"--output", "xlsx", "--output-file", filepath.Join(config.WorkDir, "out.xlsx")}

		results = append(results, BenchmarkResult{
			Students:    students,
			Questions:   questions,
			NoStoreTime: timeRuns(config, path, append(append(scale, jsonOut...), "--run-backend", "none")),
			StoreTime:   timeRuns(config, path, append(append(scale, jsonOut...), "--run-backend", "sqlite")),
			XLSXTime:    timeRuns(config, path, append(append(scale, xlsxOut...), "--run-backend", "none")),
		})
	}

	return results
}

// timeRuns converts path config.Runs times and returns the average duration.
func timeRuns(config BenchmarkConfig, path string, extraArgs []string) string {
	args := append([]string{"convert", path, "--color", "no"}, extraArgs...)

	var times []float64
	for range config.Runs {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		cmd := exec.CommandContext(ctx, "quizscale", args...)
		cmd.Dir = config.WorkDir
		if output, err := cmd.CombinedOutput(); err != nil {
			fmt.Printf("  run failed: %v\n%s\n", err, output)
		} else {
			times = append(times, time.Since(start).Seconds())
		}
		cancel()
	}

	if len(times) == 0 {
		return "FAILED"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// writeQuiz generates a quiz export whose totals always match its question scores.
func writeQuiz(path string, students, questions, questionValue int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	header := []string{"Team", "Student Name", "First Name", "Last Name", "Email Address", "Student ID", "Score"}
	for q := 1; q <= questions; q++ {
		header = append(header, fmt.Sprintf("%d_Response", q), fmt.Sprintf("%d_Score", q))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	rng := rand.New(rand.NewPCG(42, uint64(students)))
	for s := 1; s <= students; s++ {
		first, last := fmt.Sprintf("First%d", s), fmt.Sprintf("Last%d", s)
		row := []string{
			fmt.Sprintf("Team %d", s%8),
			first + " " + last, first, last,
			fmt.Sprintf("student%d@example.com", s),
			fmt.Sprintf("S%06d", s),
			"", // total, filled below
		}
		total := 0
		for range questions {
			score := rng.IntN(questionValue + 1)
			total += score
			row = append(row, string(rune('A'+rng.IntN(4))), strconv.Itoa(score))
		}
		row[6] = strconv.Itoa(total)
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/quizscale_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"students", "questions", "no_store_avg", "sqlite_store_avg", "xlsx_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		record := []string{strconv.Itoa(result.Students), strconv.Itoa(result.Questions), result.NoStoreTime, result.StoreTime, result.XLSXTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %6d x %-3d: No store: %s, SQLite store: %s, XLSX: %s\n",
			result.Students, result.Questions, result.NoStoreTime, result.StoreTime, result.XLSXTime)
	}
}
