package storage

import (
	"context"
	"time"

	"github.com/dshills/posengine/internal/numbering"
	"github.com/dshills/posengine/pkg/types"
)

// Storage defines the interface for persisting and querying POS data
type Storage interface {
	// Category operations
	CreateCategory(ctx context.Context, category *types.MenuCategory) error
	UpdateCategory(ctx context.Context, category *types.MenuCategory) error
	GetCategory(ctx context.Context, id string) (*types.MenuCategory, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]*types.MenuCategory, error)
	DeleteCategory(ctx context.Context, id string) error

	// Menu item operations
	CreateMenuItem(ctx context.Context, item *types.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *types.MenuItem) error
	GetMenuItem(ctx context.Context, id string) (*types.MenuItem, error)
	GetMenuItems(ctx context.Context, ids []string) (map[string]*types.MenuItem, error)
	ListMenuItems(ctx context.Context, filter MenuItemFilter) ([]*types.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error

	// Customization operations
	CreateCustomization(ctx context.Context, item *types.CustomizationItem) error
	UpdateCustomization(ctx context.Context, item *types.CustomizationItem) error
	GetCustomization(ctx context.Context, id string) (*types.CustomizationItem, error)
	ListCustomizations(ctx context.Context, activeOnly bool) ([]*types.CustomizationItem, error)
	DeleteCustomization(ctx context.Context, id string) error

	// Assignment operations
	CreateAssignment(ctx context.Context, assignment *types.CustomizationAssignment) error
	DeleteAssignment(ctx context.Context, id string) error
	ListAssignments(ctx context.Context, customizationID string) ([]*types.CustomizationAssignment, error)
	ListCustomizationsForMenuItem(ctx context.Context, menuItemID string, activeOnly bool) ([]*types.CustomizationItem, error)
	IsAssignedToMenuItem(ctx context.Context, customizationID, menuItemID string) (bool, error)

	// Order operations
	CreateOrder(ctx context.Context, order *types.Order, window numbering.Window) error
	GetOrder(ctx context.Context, id string) (*types.Order, error)
	SaveOrder(ctx context.Context, order *types.Order) error
	ListOrders(ctx context.Context, filter OrderFilter) ([]*types.Order, error)
	MaxOrderNumber(ctx context.Context, window numbering.Window) (int, error)
	ListPayments(ctx context.Context, orderID string) ([]*types.Payment, error)

	// Report operations
	ListPaidOrders(ctx context.Context, from, to time.Time) ([]*types.Order, error)
	ListPaymentRows(ctx context.Context, from, to time.Time) ([]PaymentRow, error)
	ListSoldLines(ctx context.Context, from, to time.Time) ([]SoldLine, error)

	// Setting operations
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	SetSettings(ctx context.Context, values map[string]string) error
	ListSettings(ctx context.Context) (map[string]string, error)

	// User operations
	CreateUser(ctx context.Context, user *types.User) error
	GetUser(ctx context.Context, id string) (*types.User, error)
	ListUsers(ctx context.Context, activeOnly bool) ([]*types.User, error)

	// Database operations
	Close() error
}

// MenuItemFilter narrows ListMenuItems
type MenuItemFilter struct {
	CategoryID string // Empty means every category
	ActiveOnly bool
}

// OrderFilter narrows ListOrders
type OrderFilter struct {
	Status types.OrderStatus // Empty means any status
	Limit  int               // 0 means no limit
}

// PaymentRow is a payment joined with the number of the order it settled
type PaymentRow struct {
	OrderNumber int
	Payment     types.Payment
}

// SoldLine is an order line of a paid order with its category resolved
type SoldLine struct {
	ItemName       string
	CategoryName   string // Empty when the menu item no longer resolves
	Qty            int
	LineTotalCents int64
}
