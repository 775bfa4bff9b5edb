package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/posengine/internal/config"
	"github.com/dshills/posengine/internal/logging"
	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/internal/users"
)

var (
	// Global flags
	configPath string
	jsonOutput bool

	// Loaded in PersistentPreRunE
	conf config.Config
	log  *logrus.Logger

	buildVersion = "dev"
	buildStamp   = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "posengine",
	Short: "Point-of-sale order engine",
	Long: `posengine is the order engine of a single-terminal restaurant register.

It keeps the menu catalog, numbers and prices orders, records payments and
builds daily sales reports on a local SQLite database. A register front end
talks to it over MCP (see "posengine serve").`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		conf, err = config.Load(configPath)
		if err != nil {
			return err
		}
		log, err = logging.New(conf.Logging.Level, conf.Logging.File)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if log == nil {
			return nil
		}
		return logging.Close(log)
	},
}

// Execute runs the root command
func Execute(version, buildTime string) {
	buildVersion, buildStamp = version, buildTime
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// openStore opens the configured database, applying pending migrations and,
// when configured, the starter catalog.
func openStore(cmd *cobra.Command) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(conf.Database.Path)
	if err != nil {
		return nil, err
	}
	if conf.Seed.OnStartup {
		if _, err := seedStore(cmd, store); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}

func seedStore(cmd *cobra.Command, store *storage.SQLiteStorage) (*storage.SeedResult, error) {
	hash, err := users.HashPIN(storage.SeedAdminPIN)
	if err != nil {
		return nil, err
	}
	result, err := store.Seed(cmd.Context(), hash, time.Now())
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"users":          result.Users,
		"categories":     result.Categories,
		"menu_items":     result.MenuItems,
		"customizations": result.Customizations,
		"assignments":    result.Assignments,
	}).Info("seed applied")
	return result, nil
}
