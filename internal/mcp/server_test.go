package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/internal/users"
	"github.com/dshills/posengine/pkg/types"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hash, err := users.HashPIN(storage.SeedAdminPIN)
	require.NoError(t, err)
	_, err = store.Seed(context.Background(), hash, testNow)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	server, err := NewServer(store, logger, Options{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return server
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// invoke runs a handler and decodes its JSON text into out.
func invoke(t *testing.T, h handler, args map[string]interface{}, out interface{}) {
	t.Helper()
	result, err := h(context.Background(), call(args))
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	require.NoError(t, json.Unmarshal([]byte(text.Text), out))
}

func requireCode(t *testing.T, err error, code int) {
	t.Helper()
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr), "expected MCPError, got %v", err)
	assert.Equal(t, code, mcpErr.Code, mcpErr.Message)
}

type orderResponse struct {
	Order types.Order `json:"order"`
}

func TestServer_Initialization(t *testing.T) {
	server := setupTestServer(t)

	assert.NotNil(t, server.mcp, "MCP server should be initialized")
	assert.NotNil(t, server.catalog)
	assert.NotNil(t, server.orders)
	assert.NotNil(t, server.reports)
	assert.NotNil(t, server.settings)
	assert.NotNil(t, server.users)
	assert.Equal(t, 10, server.topItems)
}

func TestOrderFlow(t *testing.T) {
	s := setupTestServer(t)

	var login struct {
		User           types.User `json:"user"`
		CanViewReports bool       `json:"can_view_reports"`
	}
	invoke(t, s.handleLogin, map[string]interface{}{"pin": storage.SeedAdminPIN}, &login)
	assert.Equal(t, storage.SeedAdminUserID, login.User.ID)
	assert.True(t, login.CanViewReports)

	var created orderResponse
	invoke(t, s.handleCreateOrder, map[string]interface{}{"user_id": login.User.ID, "order_type": "Takeaway"}, &created)
	orderID := created.Order.ID
	assert.Equal(t, 1, created.Order.OrderNumber)
	assert.Equal(t, types.OrderTakeaway, created.Order.OrderType)

	var added orderResponse
	invoke(t, s.handleAddItem, map[string]interface{}{"order_id": orderID, "menu_item_id": storage.SeedItemClassicBurger}, &added)
	require.Len(t, added.Order.Items, 1)
	lineID := added.Order.Items[0].ID

	var custom orderResponse
	invoke(t, s.handleAddCustomization, map[string]interface{}{
		"order_id": orderID, "line_id": lineID, "customization_id": storage.SeedCustomizationExtraCheese,
	}, &custom)
	assert.Equal(t, int64(849), custom.Order.SubtotalCents)

	var qty orderResponse
	invoke(t, s.handleUpdateQuantity, map[string]interface{}{"order_id": orderID, "line_id": lineID, "quantity": float64(2)}, &qty)
	assert.Equal(t, int64(1698), qty.Order.SubtotalCents)
	assert.Equal(t, int64(85), qty.Order.TaxCents)
	assert.Equal(t, int64(1783), qty.Order.TotalCents)

	var open struct {
		Orders []types.Order `json:"orders"`
	}
	invoke(t, s.handleListOpenOrders, nil, &open)
	require.Len(t, open.Orders, 1)

	var paid orderResponse
	invoke(t, s.handleRecordPayment, map[string]interface{}{"order_id": orderID, "method": "Card", "reference": "slip 7"}, &paid)
	assert.Equal(t, types.StatusPaid, paid.Order.Status)
	require.Len(t, paid.Order.Payments, 1)
	assert.Equal(t, int64(1783), paid.Order.Payments[0].AmountCents)

	_, err := s.handleAddItem(context.Background(), call(map[string]interface{}{"order_id": orderID, "menu_item_id": storage.SeedItemCola}))
	requireCode(t, err, ErrorCodeOrderClosed)

	var report struct {
		Date    string `json:"date"`
		Summary struct {
			TotalOrders     int   `json:"total_orders"`
			TotalSalesCents int64 `json:"total_sales_cents"`
			CardCents       int64 `json:"card_cents"`
		} `json:"summary"`
	}
	invoke(t, s.handleDailyReport, map[string]interface{}{"date": "2025-03-01"}, &report)
	assert.Equal(t, "2025-03-01", report.Date)
	assert.Equal(t, 1, report.Summary.TotalOrders)
	assert.Equal(t, int64(1783), report.Summary.TotalSalesCents)
	assert.Equal(t, int64(1783), report.Summary.CardCents)
}

func TestCatalogTools(t *testing.T) {
	s := setupTestServer(t)

	var cats struct {
		Categories []types.MenuCategory `json:"categories"`
	}
	invoke(t, s.handleListCategories, nil, &cats)
	require.Len(t, cats.Categories, 3)
	assert.Equal(t, "Burgers", cats.Categories[0].Name)

	var items struct {
		MenuItems []types.MenuItem `json:"menu_items"`
	}
	invoke(t, s.handleListMenuItems, map[string]interface{}{"category_id": storage.SeedCategoryDrinks}, &items)
	assert.Len(t, items.MenuItems, 4)

	var eligible struct {
		Customizations []types.CustomizationItem `json:"customizations"`
	}
	invoke(t, s.handleListEligibleCustomizations, map[string]interface{}{"menu_item_id": storage.SeedItemCheeseBurger}, &eligible)
	assert.Len(t, eligible.Customizations, 3)

	invoke(t, s.handleListEligibleCustomizations, map[string]interface{}{"menu_item_id": storage.SeedItemFries}, &eligible)
	assert.Empty(t, eligible.Customizations)
}

func TestSettingsTools(t *testing.T) {
	s := setupTestServer(t)

	var resp struct {
		Settings map[string]string `json:"settings"`
	}
	invoke(t, s.handleSetSetting, map[string]interface{}{"key": storage.SettingRestaurantName, "value": "Bun Stop"}, &resp)
	assert.Equal(t, "Bun Stop", resp.Settings[storage.SettingRestaurantName])

	invoke(t, s.handleGetSettings, nil, &resp)
	assert.Equal(t, "Daily", resp.Settings[storage.SettingOrderNumberResetMode])

	_, err := s.handleSetSetting(context.Background(), call(map[string]interface{}{"key": storage.SettingDailyStartHour, "value": "24"}))
	requireCode(t, err, ErrorCodeValidation)

	_, err = s.handleSetSetting(context.Background(), call(map[string]interface{}{"key": "Nope", "value": "x"}))
	requireCode(t, err, ErrorCodeValidation)
}

func TestOrderCustomizationsListedByName(t *testing.T) {
	s := setupTestServer(t)

	var created, added orderResponse
	invoke(t, s.handleCreateOrder, map[string]interface{}{"user_id": storage.SeedAdminUserID}, &created)
	invoke(t, s.handleAddItem, map[string]interface{}{"order_id": created.Order.ID, "menu_item_id": storage.SeedItemClassicBurger}, &added)
	lineID := added.Order.Items[0].ID

	var last orderResponse
	for _, id := range []string{storage.SeedCustomizationNoCheese, storage.SeedCustomizationExtraSauce, storage.SeedCustomizationExtraCheese} {
		invoke(t, s.handleAddCustomization, map[string]interface{}{
			"order_id": created.Order.ID, "line_id": lineID, "customization_id": id,
		}, &last)
	}

	names := func(o types.Order) []string {
		require.Len(t, o.Items, 1)
		out := make([]string, 0, len(o.Items[0].Customizations))
		for _, c := range o.Items[0].Customizations {
			out = append(out, c.NameSnapshot)
		}
		return out
	}
	want := []string{"Extra Cheese", "Extra Sauce", "No Cheese"}
	assert.Equal(t, want, names(last.Order))
	assert.Equal(t, "No Cheese, Extra Sauce, Extra Cheese", last.Order.Items[0].Notes)

	var fetched orderResponse
	invoke(t, s.handleGetOrder, map[string]interface{}{"order_id": created.Order.ID}, &fetched)
	assert.Equal(t, want, names(fetched.Order))

	var paid orderResponse
	invoke(t, s.handleRecordPayment, map[string]interface{}{"order_id": created.Order.ID, "method": "Cash"}, &paid)
	assert.Equal(t, want, names(paid.Order))
}

func TestUpdateQuantityBounds(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	var created, added orderResponse
	invoke(t, s.handleCreateOrder, map[string]interface{}{"user_id": storage.SeedAdminUserID}, &created)
	invoke(t, s.handleAddItem, map[string]interface{}{"order_id": created.Order.ID, "menu_item_id": storage.SeedItemClassicBurger}, &added)
	lineID := added.Order.Items[0].ID

	tests := []struct {
		name string
		qty  interface{}
		code int
	}{
		{"missing", nil, ErrorCodeInvalidParams},
		{"text", "2", ErrorCodeInvalidParams},
		{"fraction", 1.5, ErrorCodeInvalidParams},
		{"beyond int32", float64(1 << 50), ErrorCodeInvalidParams},
		{"huge", 1e300, ErrorCodeInvalidParams},
		{"zero", float64(0), ErrorCodeValidation},
		{"above line cap", float64(types.MaxQuantity + 1), ErrorCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]interface{}{"order_id": created.Order.ID, "line_id": lineID}
			if tt.qty != nil {
				args["quantity"] = tt.qty
			}
			_, err := s.handleUpdateQuantity(ctx, call(args))
			requireCode(t, err, tt.code)
		})
	}

	var fetched orderResponse
	invoke(t, s.handleGetOrder, map[string]interface{}{"order_id": created.Order.ID}, &fetched)
	assert.Equal(t, 1, fetched.Order.Items[0].Qty)
	assert.Equal(t, added.Order.TotalCents, fetched.Order.TotalCents)
}

func TestToolErrors(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		h    handler
		args map[string]interface{}
		code int
	}{
		{"missing order id", s.handleGetOrder, map[string]interface{}{}, ErrorCodeInvalidParams},
		{"unknown order", s.handleGetOrder, map[string]interface{}{"order_id": "nope"}, ErrorCodeNotFound},
		{"unknown user", s.handleCreateOrder, map[string]interface{}{"user_id": "nope"}, ErrorCodeValidation},
		{"bad order type", s.handleCreateOrder, map[string]interface{}{"user_id": storage.SeedAdminUserID, "order_type": "Drone"}, ErrorCodeValidation},
		{"wrong pin", s.handleLogin, map[string]interface{}{"pin": "9999"}, ErrorCodeValidation},
		{"bad date", s.handleDailyReport, map[string]interface{}{"date": "03/01/2025"}, ErrorCodeInvalidParams},
		{"top out of range", s.handleDailyReport, map[string]interface{}{"top": float64(0)}, ErrorCodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.h(ctx, call(tt.args))
			requireCode(t, err, tt.code)
		})
	}

	t.Run("empty order cannot be paid", func(t *testing.T) {
		var created orderResponse
		invoke(t, s.handleCreateOrder, map[string]interface{}{"user_id": storage.SeedAdminUserID}, &created)

		_, err := s.handleRecordPayment(ctx, call(map[string]interface{}{"order_id": created.Order.ID, "method": "Cash"}))
		requireCode(t, err, ErrorCodeValidation)

		_, err = s.handleRecordPayment(ctx, call(map[string]interface{}{"order_id": created.Order.ID, "method": "Cheque"}))
		requireCode(t, err, ErrorCodeValidation)
	})

	t.Run("removing an unknown line is a no-op", func(t *testing.T) {
		var created, after orderResponse
		invoke(t, s.handleCreateOrder, map[string]interface{}{"user_id": storage.SeedAdminUserID}, &created)
		invoke(t, s.handleRemoveItem, map[string]interface{}{"order_id": created.Order.ID, "line_id": "ghost"}, &after)
		assert.Equal(t, created.Order.Version, after.Order.Version)
	})
}
