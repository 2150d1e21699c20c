package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/schema"
)

// Table names for run tracking.
const (
	conversionRunsTable  = "quizscale_conversion_runs"
	questionWeightsTable = "quizscale_question_weights"
	studentScoresTable   = "quizscale_student_scores"
	questionScoresTable  = "quizscale_question_scores"
	migrationsTable      = "quizscale_schema_migrations"
)

// runTables lists every run table in creation order.
var runTables = []string{conversionRunsTable, questionWeightsTable, studentScoresTable, questionScoresTable}

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend, driverName: driverName}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range runTables {
		if _, err := db.Exec(createTableQuery(table, backend)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// columnTypes maps generic column kinds onto backend types.
type columnTypes struct {
	id, bigint, integer, float, boolean, timestamp, shortText, text string
}

func typesFor(backend schema.DatabaseBackend) columnTypes {
	switch backend {
	case schema.MySQLBackend:
		return columnTypes{
			id: "BIGINT AUTO_INCREMENT PRIMARY KEY", bigint: "BIGINT", integer: "INT", float: "DOUBLE",
			boolean: "BOOLEAN", timestamp: "DATETIME(6)", shortText: "VARCHAR(255)", text: "TEXT",
		}
	case schema.PostgreSQLBackend:
		return columnTypes{
			id: "BIGSERIAL PRIMARY KEY", bigint: "BIGINT", integer: "INT", float: "DOUBLE PRECISION",
			boolean: "BOOLEAN", timestamp: "TIMESTAMPTZ", shortText: "TEXT", text: "TEXT",
		}
	default: // SQLite
		return columnTypes{
			id: "INTEGER PRIMARY KEY AUTOINCREMENT", bigint: "INTEGER", integer: "INTEGER", float: "REAL",
			boolean: "INTEGER", timestamp: "TEXT", shortText: "TEXT", text: "TEXT",
		}
	}
}

// createTableQuery returns the CREATE TABLE query for a run table.
func createTableQuery(table string, backend schema.DatabaseBackend) string {
	t := typesFor(backend)
	quoted := quoteTableName(table, backend)

	switch table {
	case conversionRunsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s,
				run_uuid %s NOT NULL,
				quiz_name %s NOT NULL,
				source_file %s,
				original_max %s NOT NULL,
				target_max %s NOT NULL,
				original_question_value %s NOT NULL,
				use_weighted %s NOT NULL,
				start_time %s NOT NULL,
				end_time %s,
				run_duration_ms %s,
				total_students %s,
				reconciled %s,
				config_params %s
			);
		`, quoted, t.id, t.shortText, t.shortText, t.text, t.float, t.float, t.float, t.boolean,
			t.timestamp, t.timestamp, t.integer, t.integer, t.boolean, t.text)

	case questionWeightsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s NOT NULL,
				question_id %s NOT NULL,
				weight %s NOT NULL,
				converted_max %s NOT NULL,
				PRIMARY KEY (run_id, question_id)
			);
		`, quoted, t.bigint, t.integer, t.float, t.float)

	case studentScoresTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s NOT NULL,
				row_index %s NOT NULL,
				student_id %s NOT NULL,
				student_name %s NOT NULL,
				first_name %s NOT NULL,
				last_name %s NOT NULL,
				team %s,
				email %s,
				original_total_score %s NOT NULL,
				converted_total_score %s NOT NULL,
				question_sum %s NOT NULL,
				difference %s NOT NULL,
				reconciled %s NOT NULL,
				PRIMARY KEY (run_id, row_index)
			);
		`, quoted, t.bigint, t.integer, t.shortText, t.shortText, t.shortText, t.shortText, t.shortText,
			t.shortText, t.float, t.float, t.float, t.float, t.boolean)

	default: // questionScoresTable
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s NOT NULL,
				row_index %s NOT NULL,
				student_id %s NOT NULL,
				question_id %s NOT NULL,
				response %s,
				original_score %s,
				converted_score %s,
				PRIMARY KEY (run_id, row_index, question_id)
			);
		`, quoted, t.bigint, t.integer, t.shortText, t.integer, t.text, t.float, t.float)
	}
}

// placeholders returns n bind parameters in the backend's syntax, starting at start.
func (rs *RunStoreImpl) placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		if rs.backend == schema.PostgreSQLBackend {
			parts[i] = fmt.Sprintf("$%d", start+i)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// insertQuery builds an INSERT statement for the given columns.
func (rs *RunStoreImpl) insertQuery(table string, columns ...string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTableName(table, rs.backend), strings.Join(columns, ", "), rs.placeholders(1, len(columns)))
}

// BeginRun creates a new conversion run with its weight table in a single
// transaction and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(run schema.RunParams) (runID int64, err error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}
	if run.Parameters == nil {
		return 0, fmt.Errorf("run %s has no scale parameters", run.RunUUID)
	}

	configJSON, err := json.Marshal(run.ConfigParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	p := run.Parameters
	args := []any{
		run.RunUUID, run.QuizName, schema.StringPtr(run.SourceFile),
		p.OriginalMax(), p.TargetMax(), p.OriginalQuestionValue(), p.UseWeightedQuestions(),
		formatTime(run.StartTime, rs.backend), string(configJSON),
	}
	query := rs.insertQuery(conversionRunsTable,
		"run_uuid", "quiz_name", "source_file",
		"original_max", "target_max", "original_question_value", "use_weighted",
		"start_time", "config_params")

	tx, err := rs.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			runID = 0
		} else if err = tx.Commit(); err != nil {
			runID = 0
		}
	}()

	switch rs.backend {
	case schema.PostgreSQLBackend:
		err = tx.QueryRow(query+" RETURNING run_id", args...).Scan(&runID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = tx.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert conversion run: %w", err)
	}

	weightQuery := rs.insertQuery(questionWeightsTable, "run_id", "question_id", "weight", "converted_max")
	for _, w := range p.WeightTable() {
		if _, err = tx.Exec(weightQuery, runID, int32(w.QuestionID), w.Weight, w.ConvertedMax); err != nil {
			return 0, fmt.Errorf("failed to insert weight for question %d: %w", w.QuestionID, err)
		}
	}

	return runID, nil
}

// RecordStudent stores one student's totals and per-question scores in a single transaction.
func (rs *RunStoreImpl) RecordStudent(runID int64, rec schema.ConvertedRecord, check schema.RecordReconciliation) (err error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	studentQuery := rs.insertQuery(studentScoresTable,
		"run_id", "row_index", "student_id", "student_name", "first_name", "last_name", "team", "email",
		"original_total_score", "converted_total_score", "question_sum", "difference", "reconciled")
	if _, err = tx.Exec(studentQuery,
		runID, int32(check.Index), rec.StudentID, rec.StudentName, rec.FirstName, rec.LastName,
		schema.StringPtr(rec.Team), schema.StringPtr(rec.Email),
		rec.OriginalTotalScore, rec.ConvertedTotalScore, check.QuestionSum, check.Difference, check.Passed,
	); err != nil {
		return fmt.Errorf("failed to insert student scores: %w", err)
	}

	questionQuery := rs.insertQuery(questionScoresTable,
		"run_id", "row_index", "student_id", "question_id", "response", "original_score", "converted_score")
	for _, id := range rec.QuestionIDs() {
		var response *string
		if v, ok := rec.Responses[id]; ok {
			response = &v
		}
		if _, err = tx.Exec(questionQuery,
			runID, int32(check.Index), rec.StudentID, int32(id), response,
			optionalScore(rec.QuestionScores, id), optionalScore(rec.ConvertedQuestionScores, id),
		); err != nil {
			return fmt.Errorf("failed to insert score for question %d: %w", id, err)
		}
	}
	return nil
}

// optionalScore returns nil when the question has no score.
func optionalScore(scores map[schema.QuestionID]float64, id schema.QuestionID) *float64 {
	if v, ok := scores[id]; ok {
		return &v
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalStudents int, reconciled bool) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(conversionRunsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, rs.placeholders(1, 1))
	startTime, err := rs.scanTime(rs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_students = $3, reconciled = $4 WHERE run_id = $5`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_students = ?, reconciled = ? WHERE run_id = ?`, quotedTableName)
	}

	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, totalStudents, reconciled, runID); err != nil {
		return fmt.Errorf("failed to update conversion run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(conversionRunsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastRunID int64
		var lastRunTime timeScanner
		lastRunTime.backend = rs.backend
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if err := rs.db.QueryRow(lastRunQuery).Scan(&lastRunID, &lastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunID = lastRunID
		status.LastRunTime = lastRunTime.t

		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)
		oldest, err := rs.scanTime(rs.db.QueryRow(oldestRunQuery))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest

		studentsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_students), 0) FROM %s", runsTable)
		if err := rs.db.QueryRow(studentsQuery).Scan(&status.TotalStudentsConverted); err != nil {
			return status, fmt.Errorf("failed to get total students converted: %w", err)
		}
	}

	for _, table := range runTables {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		var count int64
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all conversion runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.ConversionRunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, quiz_name, source_file, original_max, target_max,
		original_question_value, use_weighted, start_time, end_time, run_duration_ms, total_students,
		reconciled, config_params FROM %s ORDER BY run_id`, quoteTableName(conversionRunsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversion runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ConversionRunRecord
	for rows.Next() {
		var record schema.ConversionRunRecord
		start := timeScanner{backend: rs.backend}
		end := timeScanner{backend: rs.backend}
		if err := rows.Scan(&record.RunID, &record.RunUUID, &record.QuizName, &record.SourceFile,
			&record.OriginalMax, &record.TargetMax, &record.OriginalQuestionValue, &record.UseWeighted,
			&start, &end, &record.RunDurationMs, &record.TotalStudents, &record.Reconciled,
			&record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan conversion run: %w", err)
		}
		record.StartTime = start.t
		if end.valid {
			endTime := end.t
			record.EndTime = &endTime
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversion runs: %w", err)
	}
	return results, nil
}

// GetAllQuestionWeights retrieves all per-run question weights from the store.
func (rs *RunStoreImpl) GetAllQuestionWeights() ([]schema.QuestionWeightRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, question_id, weight, converted_max FROM %s ORDER BY run_id, question_id`,
		quoteTableName(questionWeightsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query question weights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.QuestionWeightRecord
	for rows.Next() {
		var record schema.QuestionWeightRecord
		if err := rows.Scan(&record.RunID, &record.QuestionID, &record.Weight, &record.ConvertedMax); err != nil {
			return nil, fmt.Errorf("failed to scan question weight: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question weights: %w", err)
	}
	return results, nil
}

// GetAllStudentScores retrieves all per-student totals from the store.
func (rs *RunStoreImpl) GetAllStudentScores() ([]schema.StudentScoreRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, row_index, student_id, student_name, first_name, last_name, team, email,
		original_total_score, converted_total_score, question_sum, difference, reconciled
		FROM %s ORDER BY run_id, row_index`, quoteTableName(studentScoresTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query student scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.StudentScoreRecord
	for rows.Next() {
		var record schema.StudentScoreRecord
		if err := rows.Scan(&record.RunID, &record.RowIndex, &record.StudentID, &record.StudentName,
			&record.FirstName, &record.LastName, &record.Team, &record.Email,
			&record.OriginalTotalScore, &record.ConvertedTotalScore, &record.QuestionSum,
			&record.Difference, &record.Reconciled); err != nil {
			return nil, fmt.Errorf("failed to scan student scores: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student scores: %w", err)
	}
	return results, nil
}

// GetAllQuestionScores retrieves all per-question scores from the store.
func (rs *RunStoreImpl) GetAllQuestionScores() ([]schema.QuestionScoreRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, row_index, student_id, question_id, response, original_score, converted_score
		FROM %s ORDER BY run_id, row_index, question_id`, quoteTableName(questionScoresTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query question scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.QuestionScoreRecord
	for rows.Next() {
		var record schema.QuestionScoreRecord
		if err := rows.Scan(&record.RunID, &record.RowIndex, &record.StudentID, &record.QuestionID,
			&record.Response, &record.OriginalScore, &record.ConvertedScore); err != nil {
			return nil, fmt.Errorf("failed to scan question scores: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question scores: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column.
func (rs *RunStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	ts := timeScanner{backend: rs.backend}
	if err := row.Scan(&ts); err != nil {
		return time.Time{}, err
	}
	return ts.t, nil
}

// timeScanner reads timestamps stored as RFC3339 text (SQLite) or native values.
type timeScanner struct {
	backend schema.DatabaseBackend
	t       time.Time
	valid   bool
}

// Scan implements sql.Scanner.
func (ts *timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.valid = false
		return nil
	case time.Time:
		ts.t, ts.valid = v, true
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("unsupported time value %T for %s backend", src, ts.backend)
	}
}

func (ts *timeScanner) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("failed to parse time %q: %w", s, err)
	}
	ts.t, ts.valid = t, true
	return nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}
