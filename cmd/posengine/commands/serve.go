package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/posengine/internal/mcp"
	"github.com/dshills/posengine/internal/storage"
)

// serveCmd runs the MCP server on stdio
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the register tools over MCP on stdio",
	Long: `Start the MCP server on stdin/stdout. Logs go to stderr or the
configured log file because stdout carries the protocol.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Infof("posengine %s starting (build mode %s, driver %s)", buildVersion, storage.BuildMode, storage.DriverName)

	loc, err := conf.Location()
	if err != nil {
		return err
	}
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(store, log, mcp.Options{
		Location:       loc,
		ReportCacheTTL: conf.CacheTTL(),
		TopItems:       conf.Report.TopItems,
	})
	if err != nil {
		_ = store.Close()
		return err
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		log.WithField("db", conf.Database.Path).Info("MCP server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Infof("received signal %v, shutting down", sig)
		cancel()
		return <-errChan
	case err := <-errChan:
		if err != nil {
			return err
		}
	}
	log.Info("server stopped")
	return nil
}
