package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/posengine/internal/numbering"
	"github.com/dshills/posengine/internal/settings"
	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound      = -32001 // Order or catalog entry does not exist
	ErrorCodeOrderClosed   = -32002 // Order is paid or cancelled
	ErrorCodeConflict      = -32003 // Order changed concurrently and the retry also lost
	ErrorCodeValidation    = -32004 // Input rejected by a business rule
)

// Catalog handlers

func (s *Server) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := s.catalog.ListActiveCategories(ctx)
	if err != nil {
		return nil, s.toolError("list categories", err)
	}
	return jsonResult(map[string]interface{}{"categories": categories}), nil
}

func (s *Server) handleListMenuItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	items, err := s.catalog.ListActiveMenuItems(ctx, getStringDefault(args, "category_id", ""))
	if err != nil {
		return nil, s.toolError("list menu items", err)
	}
	return jsonResult(map[string]interface{}{"menu_items": items}), nil
}

func (s *Server) handleListCustomizations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.catalog.ListActiveCustomizations(ctx)
	if err != nil {
		return nil, s.toolError("list customizations", err)
	}
	return jsonResult(map[string]interface{}{"customizations": items}), nil
}

func (s *Server) handleListEligibleCustomizations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	menuItemID, err := requireString(args, "menu_item_id")
	if err != nil {
		return nil, err
	}
	items, err := s.catalog.ListCustomizationsEligibleFor(ctx, menuItemID)
	if err != nil {
		return nil, s.toolError("list eligible customizations", err)
	}
	return jsonResult(map[string]interface{}{"menu_item_id": menuItemID, "customizations": items}), nil
}

// Order handlers

func (s *Server) handleCreateOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	userID, err := requireString(args, "user_id")
	if err != nil {
		return nil, err
	}
	orderType := types.OrderType(getStringDefault(args, "order_type", string(types.OrderDineIn)))

	return s.orderResult("create order")(s.orders.CreateOrder(ctx, userID, orderType))
}

func (s *Server) handleGetOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	orderID, err := requireString(args, "order_id")
	if err != nil {
		return nil, err
	}
	return s.orderResult("get order")(s.orders.GetOrder(ctx, orderID))
}

func (s *Server) handleListOpenOrders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	open, err := s.orders.ListOpenOrders(ctx)
	if err != nil {
		return nil, s.toolError("list open orders", err)
	}
	return jsonResult(map[string]interface{}{"orders": open}), nil
}

func (s *Server) handleAddItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	ids, err := requireStrings(args, "order_id", "menu_item_id")
	if err != nil {
		return nil, err
	}
	return s.orderResult("add item")(s.orders.AddItem(ctx, ids[0], ids[1]))
}

func (s *Server) handleRemoveItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	ids, err := requireStrings(args, "order_id", "line_id")
	if err != nil {
		return nil, err
	}
	return s.orderResult("remove item")(s.orders.RemoveItem(ctx, ids[0], ids[1]))
}

func (s *Server) handleUpdateQuantity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	ids, err := requireStrings(args, "order_id", "line_id")
	if err != nil {
		return nil, err
	}
	qty, err := requireInt(args, "quantity")
	if err != nil {
		return nil, err
	}
	return s.orderResult("update quantity")(s.orders.UpdateQuantity(ctx, ids[0], ids[1], qty))
}

func (s *Server) handleAddCustomization(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	ids, err := requireStrings(args, "order_id", "line_id", "customization_id")
	if err != nil {
		return nil, err
	}
	return s.orderResult("add customization")(s.orders.AddCustomization(ctx, ids[0], ids[1], ids[2]))
}

func (s *Server) handleRemoveCustomization(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	ids, err := requireStrings(args, "order_id", "line_id", "customization_id")
	if err != nil {
		return nil, err
	}
	return s.orderResult("remove customization")(s.orders.RemoveCustomization(ctx, ids[0], ids[1], ids[2]))
}

func (s *Server) handleUpdateCustomerName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	orderID, err := requireString(args, "order_id")
	if err != nil {
		return nil, err
	}
	name := getStringDefault(args, "name", "")
	return s.orderResult("update customer name")(s.orders.UpdateCustomerName(ctx, orderID, name))
}

func (s *Server) handleCancelOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	orderID, err := requireString(args, "order_id")
	if err != nil {
		return nil, err
	}
	return s.orderResult("cancel order")(s.orders.CancelOrder(ctx, orderID))
}

func (s *Server) handleRecordPayment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	ids, err := requireStrings(args, "order_id", "method")
	if err != nil {
		return nil, err
	}
	reference := getStringDefault(args, "reference", "")

	order, err := s.orders.RecordPayment(ctx, ids[0], types.PaymentMethod(ids[1]), reference)
	if err != nil {
		return nil, s.toolError("record payment", err)
	}
	s.reports.Invalidate()
	return jsonResult(map[string]interface{}{"order": order.DisplayCopy()}), nil
}

// Reporting, settings and users

func (s *Server) handleDailyReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	date := s.now().UTC()
	if raw := strings.TrimSpace(getStringDefault(args, "date", "")); raw != "" {
		date, err = time.ParseInLocation(time.DateOnly, raw, time.UTC)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid date", map[string]interface{}{
				"param":  "date",
				"value":  raw,
				"reason": "expected YYYY-MM-DD",
			})
		}
	}

	top := getIntDefault(args, "top", s.topItems)
	if top < 1 || top > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top must be between 1 and 100", map[string]interface{}{
			"param": "top",
			"value": top,
		})
	}

	report, err := s.reports.Daily(ctx, date, top)
	if err != nil {
		return nil, s.toolError("build daily report", err)
	}
	return jsonResult(report), nil
}

func (s *Server) handleGetSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all, err := s.settings.All(ctx)
	if err != nil {
		return nil, s.toolError("read settings", err)
	}
	return jsonResult(map[string]interface{}{"settings": all}), nil
}

func (s *Server) handleSetSetting(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	key, err := requireString(args, "key")
	if err != nil {
		return nil, err
	}
	value, ok := args["value"].(string)
	if !ok {
		return nil, missingParam("value")
	}

	if err := s.settings.Set(ctx, key, value); err != nil {
		return nil, s.toolError("set setting", err)
	}
	all, err := s.settings.All(ctx)
	if err != nil {
		return nil, s.toolError("read settings", err)
	}
	return jsonResult(map[string]interface{}{"settings": all}), nil
}

func (s *Server) handleLogin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	pin, err := requireString(args, "pin")
	if err != nil {
		return nil, err
	}
	user, err := s.users.Authenticate(ctx, pin)
	if err != nil {
		return nil, s.toolError("login", err)
	}
	return jsonResult(map[string]interface{}{
		"user":             user,
		"can_view_reports": user.Role.CanViewReports(),
	}), nil
}

// Helper functions

// orderResult turns an order service return into a tool result.
func (s *Server) orderResult(op string) func(*types.Order, error) (*mcp.CallToolResult, error) {
	return func(order *types.Order, err error) (*mcp.CallToolResult, error) {
		if err != nil {
			return nil, s.toolError(op, err)
		}
		return jsonResult(map[string]interface{}{"order": order.DisplayCopy()}), nil
	}
}

// toolError maps a service error onto an MCP error code.
func (s *Server) toolError(op string, err error) error {
	data := map[string]interface{}{"error": err.Error()}
	switch {
	case errors.Is(err, types.ErrOrderNotFound), errors.Is(err, storage.ErrNotFound):
		return newMCPError(ErrorCodeNotFound, op+": not found", data)
	case errors.Is(err, types.ErrOrderClosed):
		return newMCPError(ErrorCodeOrderClosed, op+": order is not open", data)
	case errors.Is(err, storage.ErrConflict):
		return newMCPError(ErrorCodeConflict, op+": order was changed concurrently, reload and try again", data)
	case isValidation(err):
		return newMCPError(ErrorCodeValidation, op+": "+err.Error(), data)
	}
	s.log.WithError(err).WithField("op", op).Error("tool failed")
	return newMCPError(ErrorCodeInternalError, op+" failed", data)
}

var validationErrors = []error{
	types.ErrValidation,
	types.ErrInvalidAssignment,
	types.ErrInvalidOrderType,
	types.ErrInvalidMethod,
	types.ErrInvalidRole,
	types.ErrInvalidQuantity,
	types.ErrEmptyOrder,
	types.ErrInvalidPIN,
	numbering.ErrInvalidMode,
	numbering.ErrInvalidHour,
	numbering.ErrInvalidDayparts,
	settings.ErrUnknownKey,
	storage.ErrInUse,
	storage.ErrAlreadyExists,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

func missingParam(key string) error {
	return newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
		"param":  key,
		"reason": "missing or empty",
	})
}

// requireString extracts a non-blank string parameter
func requireString(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || strings.TrimSpace(val) == "" {
		return "", missingParam(key)
	}
	return strings.TrimSpace(val), nil
}

// requireInt extracts a whole-number parameter that fits in 32 bits. Range
// rules beyond that belong to the service.
func requireInt(args map[string]interface{}, key string) (int, error) {
	switch val := args[key].(type) {
	case int:
		if val < math.MinInt32 || val > math.MaxInt32 {
			return 0, badInt(key)
		}
		return val, nil
	case float64:
		if val != math.Trunc(val) || val < math.MinInt32 || val > math.MaxInt32 {
			return 0, badInt(key)
		}
		return int(val), nil
	case nil:
		return 0, missingParam(key)
	}
	return 0, badInt(key)
}

func badInt(key string) error {
	return newMCPError(ErrorCodeInvalidParams, key+" must be a whole number", map[string]interface{}{
		"param":  key,
		"reason": "not an integer in range",
	})
}

func requireStrings(args map[string]interface{}, keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	for i, key := range keys {
		val, err := requireString(args, key)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// jsonResult renders data as indented JSON text
func jsonResult(data interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultText(formatJSON(data))
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
