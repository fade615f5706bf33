/*
main.go - Application entry point

PURPOSE:
  Command line for the hiring service. Runs the HTTP server or loads a CSV
  file straight into the database through the same ingestion pipeline.

COMMANDS:
  serve                        Start the HTTP server with graceful shutdown
  load <table> <file.csv>      Ingest one headerless CSV file and exit

FLAGS:
  --db     SQLite database path (all commands, overrides HIRING_DB_PATH)
           Use ":memory:" for an in-memory database
  --port   HTTP server port (serve, overrides HIRING_PORT)

ENVIRONMENT:
  Read by the config package, optionally from .env / .env.local:
  HIRING_PORT, HIRING_DB_PATH, HIRING_LOG_MODE, HIRING_CORS_ORIGINS,
  HIRING_DEFAULT_YEAR, HIRING_MAX_UPLOAD_BYTES, HIRING_SHUTDOWN_TIMEOUT,
  HIRING_READ_TIMEOUT, HIRING_WRITE_TIMEOUT

EXAMPLES:
  # Run with file database
  ./hiring-engine serve --db=./data/hiring.db

  # Seed without HTTP
  ./hiring-engine load departments ./data/departments.csv

SEE ALSO:
  - serve.go: Server lifecycle
  - load.go: File ingestion
  - config/config.go: Environment settings
*/
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/hiring-engine/config"
	"github.com/warp/hiring-engine/logging"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "hiring-engine",
		Short:        "CSV ingestion and hiring reports over SQLite",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("db", "", "SQLite database path (overrides HIRING_DB_PATH)")
	cmd.AddCommand(newServeCmd(), newLoadCmd())
	return cmd
}

// setup loads the configuration, applies --db and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath, _ = cmd.Flags().GetString("db")
	}

	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
