package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/posengine/internal/storage"
)

// migrateCmd applies pending migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Open the database, apply every pending migration and print the schema
version.

Subcommands:
  rollback - Revert the most recent migration`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewSQLiteStorage(conf.Database.Path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return printSchemaVersion(cmd.Context(), store)
	},
}

// migrateRollbackCmd reverts the latest migration
var migrateRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewSQLiteStorage(conf.Database.Path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.Rollback(cmd.Context()); err != nil {
			return err
		}
		log.Warn("migration rolled back; the next start will re-apply it")
		return printSchemaVersion(cmd.Context(), store)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateRollbackCmd)
}

func printSchemaVersion(ctx context.Context, store *storage.SQLiteStorage) error {
	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(map[string]string{"schema_version": version, "database": conf.Database.Path})
	}
	fmt.Printf("Schema version: %s\nDatabase: %s\n", version, conf.Database.Path)
	return nil
}
