package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dshills/posengine/internal/numbering"
	"github.com/dshills/posengine/pkg/types"
)

const orderColumns = `id, order_number, order_type, status, created_by_user_id, created_at,
	customer_name, notes, subtotal_cents, tax_cents, discount_cents, total_cents, version, updated_at`

// windowClause restricts created_at to the window. Unbounded windows match everything.
func windowClause(column string, w numbering.Window) (string, []interface{}) {
	if w.Unbounded {
		return "1 = 1", nil
	}
	return column + " >= ? AND " + column + " < ?", []interface{}{formatTime(w.Start), formatTime(w.End)}
}

func (s *SQLiteStorage) maxOrderNumberWithQuerier(ctx context.Context, q querier, w numbering.Window) (int, error) {
	clause, args := windowClause("created_at", w)
	var max int
	err := q.QueryRowContext(ctx, "SELECT COALESCE(MAX(order_number), 0) FROM orders WHERE "+clause, args...).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read max order number: %w", err)
	}
	return max, nil
}

// MaxOrderNumber returns the highest order number created inside the window, or 0.
func (s *SQLiteStorage) MaxOrderNumber(ctx context.Context, w numbering.Window) (int, error) {
	return s.maxOrderNumberWithQuerier(ctx, s.querier(), w)
}

// CreateOrder assigns the next number in the window and inserts the order in
// the same transaction. order.CreatedAt must lie inside the window.
func (s *SQLiteStorage) CreateOrder(ctx context.Context, order *types.Order, w numbering.Window) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		max, err := s.maxOrderNumberWithQuerier(ctx, tx, w)
		if err != nil {
			return err
		}
		order.OrderNumber = numbering.Next(max)
		order.Version = 1

		query := `
			INSERT INTO orders (` + orderColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.ExecContext(ctx, query,
			order.ID, order.OrderNumber, string(order.OrderType), string(order.Status),
			order.CreatedByUserID, formatTime(order.CreatedAt),
			nullableString(order.CustomerName), nullableString(order.Notes),
			order.SubtotalCents, order.TaxCents, order.DiscountCents, order.TotalCents,
			order.Version, formatTime(order.UpdatedAt))
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := insertLinesWithQuerier(ctx, tx, order); err != nil {
			return err
		}
		return insertPaymentsWithQuerier(ctx, tx, order)
	})
	if err != nil {
		order.OrderNumber = 0
		order.Version = 0
	}
	return err
}

func scanOrder(row interface{ Scan(...interface{}) error }) (*types.Order, error) {
	var o types.Order
	var orderType, status, createdAt, updatedAt string
	var customerName, notes sql.NullString
	err := row.Scan(&o.ID, &o.OrderNumber, &orderType, &status, &o.CreatedByUserID, &createdAt,
		&customerName, &notes, &o.SubtotalCents, &o.TaxCents, &o.DiscountCents, &o.TotalCents,
		&o.Version, &updatedAt)
	if err != nil {
		return nil, err
	}
	o.OrderType = types.OrderType(orderType)
	o.Status = types.OrderStatus(status)
	o.CustomerName = stringPtr(customerName)
	o.Notes = stringPtr(notes)
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	o.Items = make([]*types.OrderItem, 0)
	return &o, nil
}

// GetOrder loads the full aggregate: lines in position order with their
// customizations, and payments.
func (s *SQLiteStorage) GetOrder(ctx context.Context, id string) (*types.Order, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := s.loadLines(ctx, order); err != nil {
		return nil, err
	}
	payments, err := s.ListPayments(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Payments = payments
	return order, nil
}

func (s *SQLiteStorage) loadLines(ctx context.Context, order *types.Order) error {
	query := `
		SELECT id, order_id, menu_item_id, name_snapshot, unit_price_cents, qty, line_total_cents, notes
		FROM order_items
		WHERE order_id = ?
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	byID := make(map[string]*types.OrderItem)
	for rows.Next() {
		var line types.OrderItem
		var notes sql.NullString
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.NameSnapshot,
			&line.UnitPriceCents, &line.Qty, &line.LineTotalCents, &notes); err != nil {
			_ = rows.Close()
			return err
		}
		line.Notes = notes.String
		order.Items = append(order.Items, &line)
		byID[line.ID] = &line
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// The single connection must be released before the next query.
	_ = rows.Close()

	if len(order.Items) == 0 {
		return nil
	}

	query = `
		SELECT c.id, c.order_item_id, c.customization_item_id, c.name_snapshot, c.price_cents
		FROM order_item_customizations c
		JOIN order_items i ON i.id = c.order_item_id
		WHERE i.order_id = ?
		ORDER BY c.position
	`
	rows, err = s.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load line customizations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var c types.OrderItemCustomization
		if err := rows.Scan(&c.ID, &c.OrderItemID, &c.CustomizationItemID, &c.NameSnapshot, &c.PriceCents); err != nil {
			return err
		}
		if line, ok := byID[c.OrderItemID]; ok {
			line.Customizations = append(line.Customizations, &c)
		}
	}
	return rows.Err()
}

// SaveOrder persists the aggregate if nobody saved it since it was loaded.
// The stored line set is replaced wholesale; payments are append-only.
// On success order.Version is advanced to the stored version.
func (s *SQLiteStorage) SaveOrder(ctx context.Context, order *types.Order) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		query := `
			UPDATE orders
			SET order_type = ?, status = ?, customer_name = ?, notes = ?,
			    subtotal_cents = ?, tax_cents = ?, discount_cents = ?, total_cents = ?,
			    version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?
		`
		result, err := tx.ExecContext(ctx, query,
			string(order.OrderType), string(order.Status),
			nullableString(order.CustomerName), nullableString(order.Notes),
			order.SubtotalCents, order.TaxCents, order.DiscountCents, order.TotalCents,
			formatTime(order.UpdatedAt), order.ID, order.Version)
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			exists, err := countWithQuerier(ctx, tx, "SELECT COUNT(*) FROM orders WHERE id = ?", order.ID)
			if err != nil {
				return fmt.Errorf("failed to check order: %w", err)
			}
			if exists == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}

		// Customizations cascade with their lines.
		if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = ?", order.ID); err != nil {
			return fmt.Errorf("failed to clear order lines: %w", err)
		}
		if err := insertLinesWithQuerier(ctx, tx, order); err != nil {
			return err
		}
		return insertPaymentsWithQuerier(ctx, tx, order)
	})
	if err != nil {
		return err
	}
	order.Version++
	return nil
}

func insertLinesWithQuerier(ctx context.Context, q querier, order *types.Order) error {
	lineQuery := `
		INSERT INTO order_items (id, order_id, menu_item_id, name_snapshot, unit_price_cents,
		                         qty, line_total_cents, notes, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	customizationQuery := `
		INSERT INTO order_item_customizations (id, order_item_id, customization_item_id,
		                                       name_snapshot, price_cents, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for i, line := range order.Items {
		var notes interface{}
		if line.Notes != "" {
			notes = line.Notes
		}
		_, err := q.ExecContext(ctx, lineQuery,
			line.ID, order.ID, line.MenuItemID, line.NameSnapshot, line.UnitPriceCents,
			line.Qty, line.LineTotalCents, notes, i)
		if err != nil {
			return fmt.Errorf("failed to insert order line %s: %w", line.ID, err)
		}
		for j, c := range line.Customizations {
			_, err := q.ExecContext(ctx, customizationQuery,
				c.ID, line.ID, c.CustomizationItemID, c.NameSnapshot, c.PriceCents, j)
			if err != nil {
				return fmt.Errorf("failed to insert line customization %s: %w", c.ID, err)
			}
		}
	}
	return nil
}

func insertPaymentsWithQuerier(ctx context.Context, q querier, order *types.Order) error {
	query := `
		INSERT INTO payments (id, order_id, method, amount_cents, reference, paid_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`
	for _, p := range order.Payments {
		_, err := q.ExecContext(ctx, query,
			p.ID, order.ID, string(p.Method), p.AmountCents, nullableString(p.Reference), formatTime(p.PaidAt))
		if err != nil {
			return fmt.Errorf("failed to insert payment %s: %w", p.ID, err)
		}
	}
	return nil
}

// ListOrders returns order headers, newest first. Lines are not loaded.
func (s *SQLiteStorage) ListOrders(ctx context.Context, filter OrderFilter) ([]*types.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders"
	var args []interface{}
	if filter.Status != "" {
		query += " WHERE status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY created_at DESC, order_number DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	return s.queryOrders(ctx, query, args...)
}

func (s *SQLiteStorage) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*types.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orders []*types.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanPayment(row interface{ Scan(...interface{}) error }, extra ...interface{}) (*types.Payment, error) {
	var p types.Payment
	var method, paidAt string
	var reference sql.NullString
	dest := append([]interface{}{&p.ID, &p.OrderID, &method, &p.AmountCents, &reference, &paidAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Method = types.PaymentMethod(method)
	p.Reference = stringPtr(reference)
	t, err := parseTime(paidAt)
	if err != nil {
		return nil, err
	}
	p.PaidAt = t
	return &p, nil
}

func (s *SQLiteStorage) ListPayments(ctx context.Context, orderID string) ([]*types.Payment, error) {
	query := `
		SELECT id, order_id, method, amount_cents, reference, paid_at
		FROM payments
		WHERE order_id = ?
		ORDER BY paid_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var payments []*types.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
