package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dshills/posengine/pkg/types"
)

// Category operations

func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *types.MenuCategory) error {
	query := `
		INSERT INTO menu_categories (id, name, sort_order, is_active)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, category.ID, category.Name, category.SortOrder, category.IsActive)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *types.MenuCategory) error {
	query := `
		UPDATE menu_categories
		SET name = ?, sort_order = ?, is_active = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, category.Name, category.SortOrder, category.IsActive, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireAffected(result)
}

func scanCategory(row interface{ Scan(...interface{}) error }) (*types.MenuCategory, error) {
	var c types.MenuCategory
	if err := row.Scan(&c.ID, &c.Name, &c.SortOrder, &c.IsActive); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStorage) GetCategory(ctx context.Context, id string) (*types.MenuCategory, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, sort_order, is_active FROM menu_categories WHERE id = ?", id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (s *SQLiteStorage) ListCategories(ctx context.Context, activeOnly bool) ([]*types.MenuCategory, error) {
	query := "SELECT id, name, sort_order, is_active FROM menu_categories"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY sort_order, name"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []*types.MenuCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteCategory removes a category with no menu items. Assignments that
// target the category go with it.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		n, err := countWithQuerier(ctx, tx, "SELECT COUNT(*) FROM menu_items WHERE category_id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to check category references: %w", err)
		}
		if n > 0 {
			return ErrInUse
		}
		return deleteByID(ctx, tx, "menu_categories", id)
	})
}

// Menu item operations

const menuItemColumns = "id, category_id, name, price_cents, tax_rate_bps, is_active"

func (s *SQLiteStorage) CreateMenuItem(ctx context.Context, item *types.MenuItem) error {
	query := `
		INSERT INTO menu_items (` + menuItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		item.ID, item.CategoryID, item.Name, item.PriceCents, item.TaxRateBps, item.IsActive)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpdateMenuItem(ctx context.Context, item *types.MenuItem) error {
	query := `
		UPDATE menu_items
		SET category_id = ?, name = ?, price_cents = ?, tax_rate_bps = ?, is_active = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		item.CategoryID, item.Name, item.PriceCents, item.TaxRateBps, item.IsActive, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return requireAffected(result)
}

func scanMenuItem(row interface{ Scan(...interface{}) error }) (*types.MenuItem, error) {
	var m types.MenuItem
	if err := row.Scan(&m.ID, &m.CategoryID, &m.Name, &m.PriceCents, &m.TaxRateBps, &m.IsActive); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStorage) GetMenuItem(ctx context.Context, id string) (*types.MenuItem, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+menuItemColumns+" FROM menu_items WHERE id = ?", id)
	m, err := scanMenuItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return m, nil
}

// GetMenuItems returns the requested items keyed by id. Ids that do not
// resolve are simply absent from the map.
func (s *SQLiteStorage) GetMenuItems(ctx context.Context, ids []string) (map[string]*types.MenuItem, error) {
	items := make(map[string]*types.MenuItem, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := "SELECT " + menuItemColumns + " FROM menu_items WHERE id IN (" + strings.Join(placeholders, ",") + ")"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items[m.ID] = m
	}
	return items, rows.Err()
}

func (s *SQLiteStorage) ListMenuItems(ctx context.Context, filter MenuItemFilter) ([]*types.MenuItem, error) {
	var conditions []string
	var args []interface{}
	if filter.CategoryID != "" {
		conditions = append(conditions, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = 1")
	}

	query := "SELECT " + menuItemColumns + " FROM menu_items"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*types.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// DeleteMenuItem removes a menu item that no order line references.
func (s *SQLiteStorage) DeleteMenuItem(ctx context.Context, id string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		n, err := countWithQuerier(ctx, tx, "SELECT COUNT(*) FROM order_items WHERE menu_item_id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to check menu item references: %w", err)
		}
		if n > 0 {
			return ErrInUse
		}
		return deleteByID(ctx, tx, "menu_items", id)
	})
}

// Customization operations

const customizationColumns = "id, name, price_cents, is_active"

func (s *SQLiteStorage) CreateCustomization(ctx context.Context, item *types.CustomizationItem) error {
	query := `
		INSERT INTO customization_items (` + customizationColumns + `)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, item.ID, item.Name, item.PriceCents, item.IsActive)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create customization: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpdateCustomization(ctx context.Context, item *types.CustomizationItem) error {
	query := `
		UPDATE customization_items
		SET name = ?, price_cents = ?, is_active = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, item.Name, item.PriceCents, item.IsActive, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update customization: %w", err)
	}
	return requireAffected(result)
}

func scanCustomization(row interface{ Scan(...interface{}) error }) (*types.CustomizationItem, error) {
	var c types.CustomizationItem
	if err := row.Scan(&c.ID, &c.Name, &c.PriceCents, &c.IsActive); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStorage) GetCustomization(ctx context.Context, id string) (*types.CustomizationItem, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+customizationColumns+" FROM customization_items WHERE id = ?", id)
	c, err := scanCustomization(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customization: %w", err)
	}
	return c, nil
}

func (s *SQLiteStorage) ListCustomizations(ctx context.Context, activeOnly bool) ([]*types.CustomizationItem, error) {
	query := "SELECT " + customizationColumns + " FROM customization_items"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name, id"
	return s.queryCustomizations(ctx, query)
}

func (s *SQLiteStorage) queryCustomizations(ctx context.Context, query string, args ...interface{}) ([]*types.CustomizationItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customizations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*types.CustomizationItem
	for rows.Next() {
		c, err := scanCustomization(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// DeleteCustomization removes a customization that is neither assigned nor
// attached to any order line.
func (s *SQLiteStorage) DeleteCustomization(ctx context.Context, id string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		assigned, err := countWithQuerier(ctx, tx,
			"SELECT COUNT(*) FROM customization_assignments WHERE customization_item_id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to check customization assignments: %w", err)
		}
		attached, err := countWithQuerier(ctx, tx,
			"SELECT COUNT(*) FROM order_item_customizations WHERE customization_item_id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to check customization references: %w", err)
		}
		if assigned > 0 || attached > 0 {
			return ErrInUse
		}
		return deleteByID(ctx, tx, "customization_items", id)
	})
}

// Assignment operations

func (s *SQLiteStorage) CreateAssignment(ctx context.Context, assignment *types.CustomizationAssignment) error {
	query := `
		INSERT INTO customization_assignments (id, customization_item_id, menu_item_id, menu_category_id)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, assignment.ID, assignment.CustomizationItemID,
		nullableString(assignment.MenuItemID), nullableString(assignment.MenuCategoryID))
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteAssignment(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "customization_assignments", id)
}

// ListAssignments lists the assignments of one customization, or all of
// them when customizationID is empty.
func (s *SQLiteStorage) ListAssignments(ctx context.Context, customizationID string) ([]*types.CustomizationAssignment, error) {
	query := "SELECT id, customization_item_id, menu_item_id, menu_category_id FROM customization_assignments"
	var args []interface{}
	if customizationID != "" {
		query += " WHERE customization_item_id = ?"
		args = append(args, customizationID)
	}
	query += " ORDER BY customization_item_id, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var assignments []*types.CustomizationAssignment
	for rows.Next() {
		var a types.CustomizationAssignment
		var menuItemID, categoryID sql.NullString
		if err := rows.Scan(&a.ID, &a.CustomizationItemID, &menuItemID, &categoryID); err != nil {
			return nil, err
		}
		a.MenuItemID = stringPtr(menuItemID)
		a.MenuCategoryID = stringPtr(categoryID)
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}

// ListCustomizationsForMenuItem returns the customizations assigned directly
// to the menu item, ordered by name.
func (s *SQLiteStorage) ListCustomizationsForMenuItem(ctx context.Context, menuItemID string, activeOnly bool) ([]*types.CustomizationItem, error) {
	query := `
		SELECT DISTINCT c.id, c.name, c.price_cents, c.is_active
		FROM customization_items c
		JOIN customization_assignments a ON a.customization_item_id = c.id
		WHERE a.menu_item_id = ?
	`
	if activeOnly {
		query += " AND c.is_active = 1"
	}
	query += " ORDER BY c.name, c.id"
	return s.queryCustomizations(ctx, query, menuItemID)
}

func (s *SQLiteStorage) IsAssignedToMenuItem(ctx context.Context, customizationID, menuItemID string) (bool, error) {
	n, err := countWithQuerier(ctx, s.db,
		"SELECT COUNT(*) FROM customization_assignments WHERE customization_item_id = ? AND menu_item_id = ?",
		customizationID, menuItemID)
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return n > 0, nil
}

// deleteByID deletes one row from a table keyed by id. table is always a
// package constant, never caller input.
func deleteByID(ctx context.Context, q querier, table, id string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
