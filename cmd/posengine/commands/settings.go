package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/posengine/internal/settings"
	"github.com/dshills/posengine/internal/storage"
)

// settingsCmd groups the settings subcommands
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change business settings",
	Long: `Business settings live in the database, not the config file.

Subcommands:
  get [key]         - Show one or all settings
  set <key> <value> - Change a setting`,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one or all settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := settingsService()
		if err != nil {
			return err
		}
		defer closeStore()

		all, err := svc.All(cmd.Context())
		if err != nil {
			return err
		}
		if len(args) == 1 {
			value, ok := all[args[0]]
			if !ok {
				return fmt.Errorf("%w: %s", settings.ErrUnknownKey, args[0])
			}
			all = map[string]string{args[0]: value}
		}
		if jsonOutput {
			return printJSON(all)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer func() { _ = w.Flush() }()
		for _, key := range settings.Keys() {
			if value, ok := all[key]; ok {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", key, value)
			}
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := settingsService()
		if err != nil {
			return err
		}
		defer closeStore()

		if err := svc.Set(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
}

func settingsService() (*settings.Service, func(), error) {
	loc, err := conf.Location()
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.NewSQLiteStorage(conf.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return settings.NewService(store, log, loc), func() { _ = store.Close() }, nil
}
