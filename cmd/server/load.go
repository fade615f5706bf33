package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/hiring-engine/hiring"
	"github.com/warp/hiring-engine/store/sqlite"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <table> <file.csv>",
		Short: "Load a headerless CSV file into departments, jobs or hired_employees",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, path := args[0], args[1]
			if _, err := hiring.ParseTable(table); err != nil {
				return err
			}

			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			store, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			result, err := hiring.NewIngester(store, logger).Ingest(cmd.Context(), table, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message())
			return nil
		},
	}
}
