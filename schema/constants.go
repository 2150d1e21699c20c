package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string

	// InputFormat represents the format of a quiz input file.
	InputFormat string

	// QuestionKind distinguishes the two question column families.
	QuestionKind string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	XLSXOut    OutputMode = "xlsx"
	ParquetOut OutputMode = "parquet"
)

// All run store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All input formats supported.
const (
	CSVInput  InputFormat = "csv"
	XLSXInput InputFormat = "xlsx"
)

// Question column families.
const (
	ResponseKind QuestionKind = "Response"
	ScoreKind    QuestionKind = "Score"
)

// Identity and total columns expected in quiz input.
const (
	TeamColumn        = "Team"
	StudentNameColumn = "Student Name"
	FirstNameColumn   = "First Name"
	LastNameColumn    = "Last Name"
	EmailColumn       = "Email Address"
	StudentIDColumn   = "Student ID"
	ScoreColumn       = "Score"
)

// Columns written by the result projection.
const (
	OriginalScoreColumn  = "Original Score"
	ConvertedScoreColumn = "Converted Score"
)

// Worksheet names searched in xlsx input, in order.
const (
	TeamAnalysisSheet    = "Team Analysis"
	StudentAnalysisSheet = "Student Analysis"
)

// RequiredColumns must be present in every quiz input.
var RequiredColumns = []string{StudentNameColumn, FirstNameColumn, LastNameColumn, StudentIDColumn, ScoreColumn}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	XLSXOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidInputFormats maps lowercase file extensions to input formats.
var ValidInputFormats = map[string]InputFormat{
	".csv":  CSVInput,
	".xlsx": XLSXInput,
	".xlsm": XLSXInput,
}
