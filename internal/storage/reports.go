package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/posengine/pkg/types"
)

// Report reads cover the half-open UTC range [from, to).

// ListPaidOrders returns headers of paid orders created in the range.
func (s *SQLiteStorage) ListPaidOrders(ctx context.Context, from, to time.Time) ([]*types.Order, error) {
	query := "SELECT " + orderColumns + `
		FROM orders
		WHERE status = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at, order_number
	`
	return s.queryOrders(ctx, query, string(types.StatusPaid), formatTime(from), formatTime(to))
}

// ListPaymentRows returns payments of paid orders taken in the range, newest first.
func (s *SQLiteStorage) ListPaymentRows(ctx context.Context, from, to time.Time) ([]PaymentRow, error) {
	query := `
		SELECT p.id, p.order_id, p.method, p.amount_cents, p.reference, p.paid_at, o.order_number
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE o.status = ? AND p.paid_at >= ? AND p.paid_at < ?
		ORDER BY p.paid_at DESC, o.order_number DESC
	`
	rows, err := s.db.QueryContext(ctx, query, string(types.StatusPaid), formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list payment rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []PaymentRow
	for rows.Next() {
		var number int
		p, err := scanPayment(rows, &number)
		if err != nil {
			return nil, err
		}
		result = append(result, PaymentRow{OrderNumber: number, Payment: *p})
	}
	return result, rows.Err()
}

// ListSoldLines returns every line of paid orders created in the range,
// with the current category of the menu item.
func (s *SQLiteStorage) ListSoldLines(ctx context.Context, from, to time.Time) ([]SoldLine, error) {
	query := `
		SELECT i.name_snapshot, COALESCE(c.name, ''), i.qty, i.line_total_cents
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		LEFT JOIN menu_items m ON m.id = i.menu_item_id
		LEFT JOIN menu_categories c ON c.id = m.category_id
		WHERE o.status = ? AND o.created_at >= ? AND o.created_at < ?
		ORDER BY o.created_at, i.position
	`
	rows, err := s.db.QueryContext(ctx, query, string(types.StatusPaid), formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list sold lines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lines []SoldLine
	for rows.Next() {
		var l SoldLine
		if err := rows.Scan(&l.ItemName, &l.CategoryName, &l.Qty, &l.LineTotalCents); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
