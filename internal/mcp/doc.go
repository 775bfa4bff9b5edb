// Package mcp implements the Model Context Protocol (MCP) server that a
// register front end drives.
//
// Every tool is a thin adapter over one service call: it validates the
// argument map, calls the catalog, order, reporting, settings or user
// service, and returns the result as indented JSON text. Order tools always
// return the refreshed order, so the client never has to reload after a
// mutation.
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Logs go to stderr or a file, never stdout.
//
// # Basic Usage
//
//	posengine serve --config posengine.yaml
//
// A typical ticket:
//
//	login                {"pin": "1234"}
//	create_order         {"user_id": "...", "order_type": "Takeaway"}
//	add_item             {"order_id": "...", "menu_item_id": "..."}
//	add_customization    {"order_id": "...", "line_id": "...", "customization_id": "..."}
//	update_quantity      {"order_id": "...", "line_id": "...", "quantity": 2}
//	record_payment       {"order_id": "...", "method": "Card", "reference": "slip 0042"}
//
// Response of an order tool:
//
//	{
//	  "order": {
//	    "id": "...",
//	    "order_number": 12,
//	    "status": "Open",
//	    "subtotal_cents": 1698,
//	    "tax_cents": 85,
//	    "total_cents": 1783,
//	    "items": [...]
//	  }
//	}
//
// # Error Handling
//
// Errors are returned as MCPError values:
//
//	-32602  invalid or missing parameter
//	-32603  internal error
//	-32001  order, menu item or other entity not found
//	-32002  order is paid or cancelled
//	-32003  order changed concurrently and the single retry also lost
//	-32004  rejected by a business rule (bad quantity, ineligible
//	        customization, empty order, unknown setting, wrong PIN)
//
// Removing a line or customization that is not on the order is not an
// error; the order comes back unchanged.
package mcp
