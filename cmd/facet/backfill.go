package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/facet/internal/config"
	"github.com/hyperengineering/facet/internal/store"
)

var backfillDBPath string

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Assign categories to projects that only carry a legacy type",
	Long: "Maps legacy project types (development, research, community, ...) onto the " +
		"four portfolio categories for records created before categories existed. " +
		"Projects that already have a category are left untouched.",
	RunE: runBackfill,
}

func init() {
	backfillCmd.Flags().StringVar(&backfillDBPath, "db", "",
		"Database path (overrides config and FACET_DB_PATH)")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	path := backfillDBPath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = cfg.Database.Path
	}

	db, err := store.NewSQLiteStore(path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	updated, err := db.BackfillCategories(context.Background())
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Backfilled %d projects\n", updated)
	return nil
}
