// Package storage provides SQLite-based persistence for the POS engine.
//
// The storage layer manages:
//   - Catalog reference data (categories, menu items, customizations, assignments)
//   - Orders with their lines, line customizations and payments
//   - Application settings (key/value)
//   - Register users
//
// # Database Schema
//
// Tables:
//   - menu_categories, menu_items: the sellable catalog
//   - customization_items, customization_assignments: modifiers and where they apply
//   - orders: ticket headers with derived totals and an optimistic version
//   - order_items, order_item_customizations: lines in position order
//   - payments: append-only settlement rows
//   - app_settings: key/value business settings
//   - users: operators with hashed PINs
//
// Migrations are versioned with semver and applied on open.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("posengine.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	order := types.NewOrder(0, types.OrderDineIn, userID, time.Now())
//	if err := db.CreateOrder(ctx, order, window); err != nil {
//	    return err
//	}
//
// # Concurrency
//
// CreateOrder reads the highest number in the numbering window and inserts
// the new order in one transaction. SaveOrder only writes when the stored
// version still matches order.Version and returns ErrConflict otherwise;
// callers reload and retry.
//
// Timestamps are stored as fixed-width UTC text so that range filters and
// ORDER BY compare chronologically.
//
// # Build Tags
//
// Pure Go build (default):
//
//   - Uses modernc.org/sqlite driver
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build ./...
//
// CGO build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo" ./...
package storage
