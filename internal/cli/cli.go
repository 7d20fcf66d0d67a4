//-------------------------------------------------------------------------
//
// pgEdge Notes ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for notes-etl.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-notes-etl/internal/config"
	"github.com/pgEdge/pgedge-notes-etl/internal/logging"
	"github.com/pgEdge/pgedge-notes-etl/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	inputPath  string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "notes-etl",
		Short: "Load a notes export into a PostgreSQL star schema",
		Long: `notes-etl reads a flat notes export, reshapes it into a star schema
(dim_time, dim_user, dim_sentiment, dim_keyword and fact_notes) and loads
it into PostgreSQL together with the vw_notes_analysis reporting view.

Every run fully replaces the warehouse tables. Running the command with no
arguments executes the whole pipeline using the configured connection
string and input path.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE:          runPipeline,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./notes-etl.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&inputPath, "input", "",
		"path of the notes export to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sampleCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if inputPath != "" {
		cfg.Input.Path = inputPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
