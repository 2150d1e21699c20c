package cmd

import (
	"fmt"

	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/internal/iocache"
	"github.com/huangsam/quizscale/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackendConfig reads and validates the run store settings only.
func runsBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("run-backend"))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("run-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run history operations.
// This is used by commands that need store access without the scale settings.
func runsSetup() error {
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}

	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunDBFilePath()
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	return nil
}

// runsCmd focused on run history management.
//
// Note: runs subcommands skip sharedSetup so that no scale flags are needed.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the history of conversion runs",
	Long: `Manage the stored history of conversion runs.

Every conversion records:
- Run metadata (quiz, source file, scale parameters, timing, reconciliation result)
- The weight table of the scale
- Original and converted totals per student
- Original and converted scores per question

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run history statistics
  clear   - Remove all run history
  export  - Export run history to Parquet
  migrate - Run database schema migrations

Examples:
  # Check run history
  quizscale runs status

  # Export for analysis in pandas/DuckDB
  quizscale runs export --output-file quiz-runs`,
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the backend, the number of stored runs and students, the time range
of the stored runs and the size of each table.

Examples:
  quizscale runs status
  QUIZSCALE_RUN_BACKEND=postgresql QUIZSCALE_RUN_DB_CONNECT="host=... dbname=..." quizscale runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("run tracking is not enabled"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(status)
	},
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored conversion runs",
	Long: `Delete all stored conversion runs and their per-student scores.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the run tables and the migration table

Examples:
  quizscale runs export --output-file backup
  quizscale runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := cfg.RunDBConnect
		if dbFilePath == "" {
			dbFilePath = contract.GetRunDBFilePath()
		}
		iocache.CloseStores()
		if err := iocache.ClearRuns(cfg.RunBackend, dbFilePath, cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run history to Parquet files next to --output-file:

- {name}.conversion_runs.parquet
- {name}.question_weights.parquet
- {name}.student_scores.parquet
- {name}.question_scores.parquet

Requires: --output-file parameter

Examples:
  quizscale runs export --output-file quiz-runs
  duckdb -c "SELECT quiz_name, avg(converted_total_score) FROM read_parquet('quiz-runs.student_scores.parquet') s JOIN read_parquet('quiz-runs.conversion_runs.parquet') r USING (run_id) GROUP BY 1"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  quizscale runs migrate

  # Rollback to initial state
  quizscale runs migrate --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
