package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/posengine/internal/storage"
)

// seedCmd installs the starter catalog
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the starter menu and admin account",
	Long: `Insert the starter categories, menu items, customizations and the admin
account (PIN ` + storage.SeedAdminPIN + `). Rows that already exist are left alone, so
running seed twice is harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewSQLiteStorage(conf.Database.Path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		result, err := seedStore(cmd, store)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(result)
		}
		fmt.Printf("Inserted %d users, %d categories, %d menu items, %d customizations, %d assignments\n",
			result.Users, result.Categories, result.MenuItems, result.Customizations, result.Assignments)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
