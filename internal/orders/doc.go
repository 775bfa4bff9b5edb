// Package orders implements the order lifecycle: creation with epoch-scoped
// numbering, line and customization edits, cancellation and payment.
//
// Orders move Open -> Paid or Open -> Cancelled and never back. Every edit
// follows the same sequence:
//
//  1. load the order with its lines and customizations
//  2. reject the call if the order is no longer open
//  3. apply the change and recompute totals from scratch
//  4. save, guarded by the order's version
//
// If the save finds that another writer got there first, the whole sequence
// runs once more against the fresh copy. A second conflict is returned as
// storage.ErrConflict.
//
// # Basic Usage
//
//	svc := orders.NewService(store, catalogSvc, settingsSvc, logger)
//
//	order, err := svc.CreateOrder(ctx, userID, types.OrderDineIn)
//	order, err = svc.AddItem(ctx, order.ID, menuItemID)
//	line := order.Items[0]
//	order, err = svc.AddCustomization(ctx, order.ID, line.ID, customizationID)
//	order, err = svc.RecordPayment(ctx, order.ID, types.PaymentCash, "")
//
// Lookups that miss inside an order (an unknown line, a customization that
// is not on the line) return the order unchanged with a nil error. An
// unknown order returns types.ErrOrderNotFound.
package orders
