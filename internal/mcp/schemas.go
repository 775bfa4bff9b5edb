package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/posengine/internal/settings"
	"github.com/dshills/posengine/pkg/types"
)

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func objectSchema(properties map[string]interface{}, required ...string) mcp.ToolInputSchema {
	if properties == nil {
		properties = map[string]interface{}{}
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func enumValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// Catalog tools

func listCategoriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_categories",
		Description: "List active menu categories in display order",
		InputSchema: objectSchema(nil),
	}
}

func listMenuItemsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_menu_items",
		Description: "List active menu items, optionally limited to one category",
		InputSchema: objectSchema(map[string]interface{}{
			"category_id": stringProp("Only items of this category"),
		}),
	}
}

func listCustomizationsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_customizations",
		Description: "List active customizations (add-ons and removals)",
		InputSchema: objectSchema(nil),
	}
}

func listEligibleCustomizationsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_eligible_customizations",
		Description: "List the customizations that may be attached to a menu item",
		InputSchema: objectSchema(map[string]interface{}{
			"menu_item_id": stringProp("Menu item the line was rung up from"),
		}, "menu_item_id"),
	}
}

// Order tools

func createOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_order",
		Description: "Open a new empty order with the next order number of the current epoch",
		InputSchema: objectSchema(map[string]interface{}{
			"user_id": stringProp("Operator opening the order"),
			"order_type": map[string]interface{}{
				"type":        "string",
				"description": "How the order is served",
				"enum":        enumValues(types.OrderTypes),
				"default":     string(types.OrderDineIn),
			},
		}, "user_id"),
	}
}

func getOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_order",
		Description: "Load an order with its lines, customizations and payments",
		InputSchema: objectSchema(map[string]interface{}{
			"order_id": stringProp("Order id"),
		}, "order_id"),
	}
}

func listOpenOrdersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_open_orders",
		Description: "List open orders, newest first",
		InputSchema: objectSchema(nil),
	}
}

func addItemTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_item",
		Description: "Append a line of quantity 1 for a menu item",
		InputSchema: objectSchema(map[string]interface{}{
			"order_id":     stringProp("Order id"),
			"menu_item_id": stringProp("Active menu item id"),
		}, "order_id", "menu_item_id"),
	}
}

func removeItemTool() mcp.Tool {
	return mcp.Tool{
		Name:        "remove_item",
		Description: "Remove a line from an order. Unknown lines are ignored",
		InputSchema: objectSchema(map[string]interface{}{
			"order_id": stringProp("Order id"),
			"line_id":  stringProp("Order line id"),
		}, "order_id", "line_id"),
	}
}

func updateQuantityTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_quantity",
		Description: "Set the quantity of a line",
		InputSchema: objectSchema(map[string]interface{}{
			"order_id": stringProp("Order id"),
			"line_id":  stringProp("Order line id"),
			"quantity": map[string]interface{}{
				"type":        "integer",
				"description": "New quantity",
				"minimum":     1,
				"maximum":     types.MaxQuantity,
			},
		}, "order_id", "line_id", "quantity"),
	}
}

func addCustomizationTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_customization",
		Description: "Attach an eligible customization to a line",
		InputSchema: objectSchema(map[string]interface{}{
			"order_id":         stringProp("Order id"),
			"line_id":          stringProp("Order line id"),
			"customization_id": stringProp("Customization item id"),
		}, "order_id", "line_id", "customization_id"),
	}
}

func removeCustomizationTool() mcp.Tool {
	return mcp.Tool{
		Name:        "remove_customization",
		Description: "Detach a customization from a line, by attachment id or customization item id",
		InputSchema: objectSchema(map[string]interface{}{
			"order_id":         stringProp("Order id"),
			"line_id":          stringProp("Order line id"),
			"customization_id": stringProp("Attachment id or customization item id"),
		}, "order_id", "line_id", "customization_id"),
	}
}

func updateCustomerNameTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_customer_name",
		Description: "Set or clear the customer name on an order",
		InputSchema: objectSchema(map[string]interface{}{
			"order_id": stringProp("Order id"),
			"name":     stringProp("Customer name; blank clears it"),
		}, "order_id"),
	}
}

func cancelOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "cancel_order",
		Description: "Cancel an open order",
		InputSchema: objectSchema(map[string]interface{}{
			"order_id": stringProp("Order id"),
		}, "order_id"),
	}
}

func recordPaymentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "record_payment",
		Description: "Settle an open order for its full total and mark it paid",
		InputSchema: objectSchema(map[string]interface{}{
			"order_id": stringProp("Order id"),
			"method": map[string]interface{}{
				"type":        "string",
				"description": "Payment method",
				"enum":        enumValues(types.PaymentMethods),
			},
			"reference": stringProp("Optional card slip or transaction reference"),
		}, "order_id", "method"),
	}
}

// Reporting, settings and users

func dailyReportTool() mcp.Tool {
	return mcp.Tool{
		Name:        "daily_report",
		Description: "Sales summary, payments, item, category, top item and hourly figures for one UTC day",
		InputSchema: objectSchema(map[string]interface{}{
			"date": stringProp("Day as YYYY-MM-DD; defaults to today (UTC)"),
			"top": map[string]interface{}{
				"type":        "integer",
				"description": "Number of top items to return",
				"default":     10,
				"minimum":     1,
				"maximum":     100,
			},
		}),
	}
}

func getSettingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_settings",
		Description: "Return every setting with defaults filled in",
		InputSchema: objectSchema(nil),
	}
}

func setSettingTool() mcp.Tool {
	keys := settings.Keys()
	return mcp.Tool{
		Name:        "set_setting",
		Description: "Change one setting; the value is validated for its key",
		InputSchema: objectSchema(map[string]interface{}{
			"key": map[string]interface{}{
				"type":        "string",
				"description": "Setting key",
				"enum":        keys,
			},
			"value": stringProp("New value"),
		}, "key", "value"),
	}
}

func loginTool() mcp.Tool {
	return mcp.Tool{
		Name:        "login",
		Description: "Identify the operator by PIN",
		InputSchema: objectSchema(map[string]interface{}{
			"pin": stringProp("4 to 8 digit PIN"),
		}, "pin"),
	}
}
