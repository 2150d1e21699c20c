// Package cmd defines the command-line interface for quizscale.
package cmd

import (
	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(paramsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Float64("original-max", 0, "Maximum score on the original scale (e.g. 15)")
	rootCmd.PersistentFlags().Float64("target-max", 0, "Maximum score on the target scale (e.g. 10)")
	rootCmd.PersistentFlags().Float64("question-value", 0, "Points per question on the original scale (e.g. 3)")
	rootCmd.PersistentFlags().Bool("weighted", false, "Distribute the target scale by per-question weights")
	rootCmd.PersistentFlags().String("weights", "", "Per-question weights (format: '1:2,2:1,3:1')")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or xlsx or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("run-backend", string(schema.SQLiteBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of convertCmd to Viper
	convertCmd.Flags().String("quiz-name", "", "Quiz name recorded with the run (default: input file name)")
	convertCmd.Flags().String("sheet", "", "Worksheet to read from an xlsx file (default: 'Team Analysis', then 'Student Analysis')")
	convertCmd.Flags().Bool("strict", false, "Exit non-zero when any student does not reconcile")
	if err := viper.BindPFlags(convertCmd.Flags()); err != nil {
		contract.LogFatal("Error binding convert flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultAddr, "Address for the HTTP API to listen on")
	serveCmd.Flags().String("allowed-origins", "", "Comma-separated list of CORS origins for the HTTP API")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
