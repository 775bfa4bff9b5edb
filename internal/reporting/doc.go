// Package reporting computes read-only daily sales figures.
//
// A day is a UTC calendar day. Sections built from order lines (item,
// category and top-item sales, order count, total sales) look at paid orders
// created that day. Sections built from payments (method split, order list,
// hourly sales) look at payments taken that day. Open and cancelled orders
// never contribute.
package reporting
