package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/dshills/posengine/internal/catalog"
	"github.com/dshills/posengine/internal/orders"
	"github.com/dshills/posengine/internal/reporting"
	"github.com/dshills/posengine/internal/settings"
	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/internal/users"
)

const (
	// ServerName is the MCP server name
	ServerName = "posengine"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Options tunes the services behind the tools.
type Options struct {
	// Location is the store's wall clock for numbering boundaries.
	Location *time.Location
	// ReportCacheTTL is how long a daily report is reused; zero disables caching.
	ReportCacheTTL time.Duration
	// TopItems is the default row count of the top items section.
	TopItems int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	log      logrus.FieldLogger
	now      func() time.Time
	topItems int

	catalog  *catalog.Service
	orders   *orders.Service
	reports  *reporting.Service
	settings *settings.Service
	users    *users.Service
}

// NewServer wires every service over store and registers the tools. The
// server owns store from here on and closes it when Serve returns.
func NewServer(store storage.Storage, log logrus.FieldLogger, opts Options) (*Server, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TopItems <= 0 {
		opts.TopItems = reporting.DefaultTopItems
	}

	cat := catalog.NewService(store, log)
	set := settings.NewService(store, log, opts.Location)

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		storage:  store,
		log:      log.WithField("component", "mcp"),
		now:      opts.Now,
		topItems: opts.TopItems,
		catalog:  cat,
		orders:   orders.NewService(store, cat, set, log, orders.WithClock(opts.Now)),
		reports:  reporting.NewService(store, log, opts.ReportCacheTTL),
		settings: set,
		users:    users.NewService(store, log),
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()

	errCh := make(chan error, 1)
	go func() { errCh <- server.ServeStdio(s.mcp) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// Catalog
	s.mcp.AddTool(listCategoriesTool(), s.handleListCategories)
	s.mcp.AddTool(listMenuItemsTool(), s.handleListMenuItems)
	s.mcp.AddTool(listCustomizationsTool(), s.handleListCustomizations)
	s.mcp.AddTool(listEligibleCustomizationsTool(), s.handleListEligibleCustomizations)

	// Orders
	s.mcp.AddTool(createOrderTool(), s.handleCreateOrder)
	s.mcp.AddTool(getOrderTool(), s.handleGetOrder)
	s.mcp.AddTool(listOpenOrdersTool(), s.handleListOpenOrders)
	s.mcp.AddTool(addItemTool(), s.handleAddItem)
	s.mcp.AddTool(removeItemTool(), s.handleRemoveItem)
	s.mcp.AddTool(updateQuantityTool(), s.handleUpdateQuantity)
	s.mcp.AddTool(addCustomizationTool(), s.handleAddCustomization)
	s.mcp.AddTool(removeCustomizationTool(), s.handleRemoveCustomization)
	s.mcp.AddTool(updateCustomerNameTool(), s.handleUpdateCustomerName)
	s.mcp.AddTool(cancelOrderTool(), s.handleCancelOrder)
	s.mcp.AddTool(recordPaymentTool(), s.handleRecordPayment)

	// Reporting, settings and users
	s.mcp.AddTool(dailyReportTool(), s.handleDailyReport)
	s.mcp.AddTool(getSettingsTool(), s.handleGetSettings)
	s.mcp.AddTool(setSettingTool(), s.handleSetSetting)
	s.mcp.AddTool(loginTool(), s.handleLogin)
}
