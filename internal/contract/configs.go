package contract

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/quizscale/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 6
	DefaultAddr      = ":8080"
)

// Config holds the runtime configuration for a conversion.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath   string
	InputFormat schema.InputFormat
	Sheet       string
	QuizName    string
	Strict      bool

	// Params is nil until scale values are supplied and validated
	Params *schema.ScaleParameters

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	Addr           string
	AllowedOrigins []string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Scale ---
	OriginalMax     float64            `mapstructure:"original-max"`
	TargetMax       float64            `mapstructure:"target-max"`
	QuestionValue   float64            `mapstructure:"question-value"`
	Weighted        bool               `mapstructure:"weighted"`
	WeightsStr      string             `mapstructure:"weights"`
	QuestionWeights map[string]float64 `mapstructure:"question-weights"`

	// --- Input ---
	QuizName string `mapstructure:"quiz-name"`
	Sheet    string `mapstructure:"sheet"`
	Strict   bool   `mapstructure:"strict"`

	// --- Output ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`

	// --- Run store ---
	RunBackend   string `mapstructure:"run-backend"`
	RunDBConnect string `mapstructure:"run-db-connect"`

	// --- Server ---
	Addr           string `mapstructure:"addr"`
	AllowedOrigins string `mapstructure:"allowed-origins"`
}

// Clone returns a copy of the config that can be changed independently.
func (c *Config) Clone() *Config {
	clone := *c
	clone.AllowedOrigins = slices.Clone(c.AllowedOrigins)
	return &clone
}

// HasScale reports whether scale parameters were configured.
func (c *Config) HasScale() bool {
	return c.Params != nil
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := processScale(cfg, input); err != nil {
		return err
	}
	if err := resolveInputPath(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output and server fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Sheet = strings.TrimSpace(input.Sheet)
	cfg.QuizName = strings.TrimSpace(input.QuizName)
	cfg.Strict = input.Strict

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, xlsx, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	cfg.AllowedOrigins = nil
	for o := range strings.SplitSeq(input.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return nil
}

// validateBackendConfig validates the run store backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	return ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect)
}

// processScale merges weight sources and builds the scale parameters.
// Scale values left at zero mean "not configured", which is only valid
// for commands that never convert.
func processScale(cfg *Config, input *ConfigRawInput) error {
	cfg.Params = nil
	if input.OriginalMax == 0 && input.TargetMax == 0 && input.QuestionValue == 0 {
		return nil
	}

	weights := make(map[schema.QuestionID]float64)
	for key, w := range input.QuestionWeights {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return fmt.Errorf("invalid question-weights key '%s': %w", key, err)
		}
		weights[schema.QuestionID(id)] = w
	}
	if input.WeightsStr != "" {
		parsed, err := ParseQuestionWeights(input.WeightsStr)
		if err != nil {
			return fmt.Errorf("invalid --weights format: %w", err)
		}
		maps.Copy(weights, parsed)
	}
	if !input.Weighted && len(weights) > 0 {
		LogWarn("Ignoring question weights", fmt.Errorf("--weighted is off"))
	}

	params, err := schema.NewScaleParameters(input.OriginalMax, input.TargetMax, input.QuestionValue, weights, input.Weighted)
	if err != nil {
		return err
	}
	cfg.Params = params
	return nil
}

// resolveInputPath resolves the positional input file and derives the quiz name.
func resolveInputPath(cfg *Config, input *ConfigRawInput) error {
	if input.InputPathStr == "" {
		return nil
	}
	absPath, err := filepath.Abs(input.InputPathStr)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %s is a directory", absPath)
	}

	format, err := DetectInputFormat(absPath)
	if err != nil {
		return err
	}
	cfg.InputPath = absPath
	cfg.InputFormat = format
	if cfg.QuizName == "" {
		cfg.QuizName = QuizNameFromPath(absPath)
	}
	return nil
}

// DetectInputFormat maps a file extension onto a supported input format.
func DetectInputFormat(path string) (schema.InputFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := schema.ValidInputFormats[ext]
	if !ok {
		return "", fmt.Errorf("unsupported input file type '%s'. must be .csv, .xlsx, .xlsm", ext)
	}
	return format, nil
}

// QuizNameFromPath returns the file's base name without its extension.
func QuizNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseQuestionWeights parses a string like "1:2,2:1.5,4:0.5"
// into a map of question id to weight.
func ParseQuestionWeights(s string) (map[schema.QuestionID]float64, error) {
	weights := make(map[schema.QuestionID]float64)

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid weight format '%s', expected 'question:weight'", part)
		}

		idStr := strings.TrimSpace(keyValue[0])
		valueStr := strings.TrimSpace(keyValue[1])

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid question number '%s', must be a positive integer", idStr)
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight '%s' for question %d: %w", valueStr, id, err)
		}

		weights[schema.QuestionID(id)] = value
	}

	return weights, nil
}
