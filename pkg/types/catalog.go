package types

import (
	"fmt"
	"strings"

	"github.com/dshills/posengine/internal/money"
)

// MenuCategory groups menu items on the register. Categories sort by
// SortOrder, ties broken by Name.
type MenuCategory struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}

// Validate checks required fields
func (c *MenuCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrValidation)
	}
	return nil
}

// MenuItem is a sellable product. Price and name are snapshotted into order
// lines, so later edits never change historical tickets.
type MenuItem struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	TaxRateBps int    `json:"tax_rate_bps"`
	IsActive   bool   `json:"is_active"`
}

// Validate checks required fields and ranges
func (m *MenuItem) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: item name is required", ErrValidation)
	}
	if m.CategoryID == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if m.PriceCents < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if !money.ValidPrice(m.PriceCents) {
		return fmt.Errorf("%w: price cannot exceed %d cents", ErrValidation, money.MaxPriceCents)
	}
	if !money.ValidTaxRate(m.TaxRateBps) {
		return fmt.Errorf("%w: tax rate must be between 0 and %d bps", ErrValidation, money.MaxTaxRateBps)
	}
	return nil
}

// CustomizationItem is a modifier ("Extra Cheese") whose price delta is added
// to the unit price of the line it is attached to.
type CustomizationItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	IsActive   bool   `json:"is_active"`
}

// Validate checks required fields and ranges
func (c *CustomizationItem) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: customization name is required", ErrValidation)
	}
	if c.PriceCents < 0 {
		return fmt.Errorf("%w: price delta cannot be negative", ErrValidation)
	}
	if !money.ValidPrice(c.PriceCents) {
		return fmt.Errorf("%w: price delta cannot exceed %d cents", ErrValidation, money.MaxPriceCents)
	}
	return nil
}

// CustomizationAssignment links a customization to a menu item or a menu
// category. At least one target must be set.
type CustomizationAssignment struct {
	ID                  string  `json:"id"`
	CustomizationItemID string  `json:"customization_item_id"`
	MenuItemID          *string `json:"menu_item_id,omitempty"`
	MenuCategoryID      *string `json:"menu_category_id,omitempty"`
}

// Validate rejects assignments without a target
func (a *CustomizationAssignment) Validate() error {
	if a.CustomizationItemID == "" {
		return fmt.Errorf("%w: customization is required", ErrValidation)
	}
	if isBlank(a.MenuItemID) && isBlank(a.MenuCategoryID) {
		return ErrInvalidAssignment
	}
	return nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
