// Package catalog serves the menu: categories, menu items, customizations and
// the assignments that decide which customizations a menu item accepts.
//
// The order service treats the catalog as read-only reference data. Names and
// prices are copied into order lines when they are added, so edits made here
// never change existing tickets.
package catalog
