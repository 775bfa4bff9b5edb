package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/posengine/pkg/types"
)

// Well-known ids of the starter catalog. Re-seeding is a no-op because every
// insert is keyed on these.
const (
	SeedAdminUserID = "8c43e0f9-5f78-4d0d-8b1c-2f623e5bb343"

	SeedCategoryBurgers = "5b2b9638-b8b9-4b62-8c31-39aefbcb8c50"
	SeedCategorySides   = "5d6f9a8a-dfa0-4a1e-8844-0d9d41a76169"
	SeedCategoryDrinks  = "f566ceab-7a9a-4fd3-a7b7-9dd3b9e4f90e"

	SeedItemClassicBurger = "bd2c0d0a-5297-46a6-9a89-6de819b8f10f"
	SeedItemCheeseBurger  = "8b5a657d-c3ef-49d1-b857-09c497ea6341"
	SeedItemVeggieBurger  = "7e3a0d89-0a2e-409d-bb6e-7d72af4de2dc"
	SeedItemFries         = "93f3c3e7-7640-4d14-9cd5-3b1f8cbe00b2"
	SeedItemOnionRings    = "a7758e44-fef5-41ff-879d-5045e5b84e85"
	SeedItemGardenSalad   = "f2f09107-0d79-4f51-9df9-c1e5b7af1276"
	SeedItemCola          = "ea0de778-6d83-4ea7-b0fd-95b88c4a2f1f"
	SeedItemLemonade      = "f439a2a4-0f6e-4f2b-9c5b-7cb1a20d8c7e"
	SeedItemIcedTea       = "1a80d413-98fd-4aac-a785-7e4a84a1ed9c"
	SeedItemWater         = "9f7d4d8d-1f6d-4c46-9ce0-4b5d7b8f9d1a"

	SeedCustomizationNoCheese    = "f4a7e147-93a6-47de-9cc9-1706e3f54f90"
	SeedCustomizationExtraCheese = "6f1f0fd3-1224-4bcf-9f7e-93694dc43071"
	SeedCustomizationExtraSauce  = "7b1d6c2a-7d8f-4d6e-8071-71e483f3c4c6"
)

// SeedAdminPIN is the PIN of the seeded admin account.
const SeedAdminPIN = "1234"

var seedCategories = []types.MenuCategory{
	{ID: SeedCategoryBurgers, Name: "Burgers", SortOrder: 1, IsActive: true},
	{ID: SeedCategorySides, Name: "Sides", SortOrder: 2, IsActive: true},
	{ID: SeedCategoryDrinks, Name: "Drinks", SortOrder: 3, IsActive: true},
}

var seedMenuItems = []types.MenuItem{
	{ID: SeedItemClassicBurger, CategoryID: SeedCategoryBurgers, Name: "Classic Burger", PriceCents: 799, TaxRateBps: 500, IsActive: true},
	{ID: SeedItemCheeseBurger, CategoryID: SeedCategoryBurgers, Name: "Cheese Burger", PriceCents: 899, TaxRateBps: 500, IsActive: true},
	{ID: SeedItemVeggieBurger, CategoryID: SeedCategoryBurgers, Name: "Veggie Burger", PriceCents: 849, TaxRateBps: 500, IsActive: true},
	{ID: SeedItemFries, CategoryID: SeedCategorySides, Name: "Fries", PriceCents: 299, TaxRateBps: 500, IsActive: true},
	{ID: SeedItemOnionRings, CategoryID: SeedCategorySides, Name: "Onion Rings", PriceCents: 349, TaxRateBps: 500, IsActive: true},
	{ID: SeedItemGardenSalad, CategoryID: SeedCategorySides, Name: "Garden Salad", PriceCents: 399, TaxRateBps: 500, IsActive: true},
	{ID: SeedItemCola, CategoryID: SeedCategoryDrinks, Name: "Cola", PriceCents: 199, TaxRateBps: 0, IsActive: true},
	{ID: SeedItemLemonade, CategoryID: SeedCategoryDrinks, Name: "Lemonade", PriceCents: 219, TaxRateBps: 0, IsActive: true},
	{ID: SeedItemIcedTea, CategoryID: SeedCategoryDrinks, Name: "Iced Tea", PriceCents: 209, TaxRateBps: 0, IsActive: true},
	{ID: SeedItemWater, CategoryID: SeedCategoryDrinks, Name: "Bottled Water", PriceCents: 149, TaxRateBps: 0, IsActive: true},
}

var seedCustomizations = []types.CustomizationItem{
	{ID: SeedCustomizationNoCheese, Name: "No Cheese", PriceCents: 0, IsActive: true},
	{ID: SeedCustomizationExtraCheese, Name: "Extra Cheese", PriceCents: 50, IsActive: true},
	{ID: SeedCustomizationExtraSauce, Name: "Extra Sauce", PriceCents: 25, IsActive: true},
}

// seedAssignmentID derives a stable id so re-seeding finds the same row.
func seedAssignmentID(customizationID, menuItemID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(customizationID+"/"+menuItemID)).String()
}

// SeedResult counts the rows a Seed call actually inserted.
type SeedResult struct {
	Users          int
	Categories     int
	MenuItems      int
	Customizations int
	Assignments    int
}

// Seed installs the starter catalog and the admin account. adminPinHash is
// the hashed form of SeedAdminPIN; hashing lives with the user service.
func (s *SQLiteStorage) Seed(ctx context.Context, adminPinHash string, now time.Time) (*SeedResult, error) {
	result := &SeedResult{}
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		n, err := insertIgnore(ctx, tx,
			"INSERT OR IGNORE INTO users (id, display_name, pin_hash, role, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			SeedAdminUserID, "Admin", adminPinHash, string(types.RoleAdmin), true, formatTime(now))
		if err != nil {
			return err
		}
		result.Users += n

		for _, c := range seedCategories {
			n, err := insertIgnore(ctx, tx,
				"INSERT OR IGNORE INTO menu_categories (id, name, sort_order, is_active) VALUES (?, ?, ?, ?)",
				c.ID, c.Name, c.SortOrder, c.IsActive)
			if err != nil {
				return err
			}
			result.Categories += n
		}

		for _, m := range seedMenuItems {
			n, err := insertIgnore(ctx, tx,
				"INSERT OR IGNORE INTO menu_items ("+menuItemColumns+") VALUES (?, ?, ?, ?, ?, ?)",
				m.ID, m.CategoryID, m.Name, m.PriceCents, m.TaxRateBps, m.IsActive)
			if err != nil {
				return err
			}
			result.MenuItems += n
		}

		for _, c := range seedCustomizations {
			n, err := insertIgnore(ctx, tx,
				"INSERT OR IGNORE INTO customization_items ("+customizationColumns+") VALUES (?, ?, ?, ?)",
				c.ID, c.Name, c.PriceCents, c.IsActive)
			if err != nil {
				return err
			}
			result.Customizations += n
		}

		for _, c := range seedCustomizations {
			for _, itemID := range []string{SeedItemClassicBurger, SeedItemCheeseBurger, SeedItemVeggieBurger} {
				n, err := insertIgnore(ctx, tx,
					"INSERT OR IGNORE INTO customization_assignments (id, customization_item_id, menu_item_id) VALUES (?, ?, ?)",
					seedAssignmentID(c.ID, itemID), c.ID, itemID)
				if err != nil {
					return err
				}
				result.Assignments += n
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	return result, nil
}

func insertIgnore(ctx context.Context, q querier, query string, args ...interface{}) (int, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
