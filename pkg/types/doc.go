// Package types provides the shared domain types of the POS order engine.
//
// It defines the catalog reference data (categories, menu items,
// customizations and their assignments), the Order aggregate with its lines
// and customization snapshots, payments, users and the sentinel errors every
// layer reports with.
//
// # Order Aggregate
//
// Order owns its lines and payments; a line owns its customizations. Catalog
// rows are referenced by id and copied by value into lines so later edits
// never alter historical tickets:
//
//	order := types.NewOrder(1, types.OrderDineIn, userID, time.Now())
//	line := order.AddLine(burger)
//	line.AttachCustomization(extraCheese)
//	order.Recalculate(map[string]int{burger.ID: burger.TaxRateBps})
//
// # Totals
//
// Recalculate is wholesale: every line total and the order subtotal, tax and
// total are rebuilt from the current line data on every call.
//
//	line total = (unit price + sum of customization deltas) * qty
//	line tax   = round half away from zero(line total * bps / 10000)
//	subtotal   = sum of line totals
//	tax        = sum of line taxes
//	total      = subtotal + tax - discount
//
// All amounts are integer cents.
package types
