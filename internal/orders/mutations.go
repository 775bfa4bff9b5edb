package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/pkg/types"
)

// AddItem appends a new quantity-1 line for the menu item. Repeated calls
// for the same item add separate lines; use UpdateQuantity to change a count.
// A missing or inactive menu item is a validation error and the order is
// left unchanged.
func (s *Service) AddItem(ctx context.Context, orderID, menuItemID string) (*types.Order, error) {
	return s.mutate(ctx, orderID, "add_item", func(ctx context.Context, order *types.Order) (bool, error) {
		item, err := s.catalog.GetMenuItem(ctx, menuItemID)
		if errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("%w: menu item %s does not exist", types.ErrValidation, menuItemID)
		}
		if err != nil {
			return false, err
		}
		if !item.IsActive {
			return false, fmt.Errorf("%w: menu item %s is not available", types.ErrValidation, item.Name)
		}

		line := order.AddLine(item)
		s.log.WithFields(logrus.Fields{"order_id": order.ID, "line_id": line.ID}).Debug("line added")
		return true, s.recalculate(ctx, order)
	})
}

// RemoveItem drops a line with its customizations. An unknown line is a no-op.
func (s *Service) RemoveItem(ctx context.Context, orderID, lineID string) (*types.Order, error) {
	return s.mutate(ctx, orderID, "remove_item", func(ctx context.Context, order *types.Order) (bool, error) {
		if !order.RemoveLine(lineID) {
			return false, nil
		}
		return true, s.recalculate(ctx, order)
	})
}

// UpdateQuantity sets a line's quantity. qty must be at least 1; an unknown
// line is a no-op.
func (s *Service) UpdateQuantity(ctx context.Context, orderID, lineID string, qty int) (*types.Order, error) {
	if qty < 1 || qty > types.MaxQuantity {
		return nil, fmt.Errorf("%w: got %d, want 1 to %d", types.ErrInvalidQuantity, qty, types.MaxQuantity)
	}
	return s.mutate(ctx, orderID, "update_quantity", func(ctx context.Context, order *types.Order) (bool, error) {
		line := order.FindItem(lineID)
		if line == nil || line.Qty == qty {
			return false, nil
		}
		line.Qty = qty
		return true, s.recalculate(ctx, order)
	})
}

// AddCustomization attaches a customization to a line. Customizations that
// are inactive, unknown, not assigned to the line's menu item, or already on
// the line are declined silently: the order comes back unchanged.
func (s *Service) AddCustomization(ctx context.Context, orderID, lineID, customizationID string) (*types.Order, error) {
	return s.mutate(ctx, orderID, "add_customization", func(ctx context.Context, order *types.Order) (bool, error) {
		line := order.FindItem(lineID)
		if line == nil || line.HasCustomizationItem(customizationID) {
			return false, nil
		}

		c, err := s.catalog.Eligible(ctx, customizationID, line.MenuItemID)
		if err != nil {
			return false, err
		}
		if c == nil {
			s.log.WithFields(logrus.Fields{
				"order_id":         order.ID,
				"line_id":          line.ID,
				"customization_id": customizationID,
			}).Debug("customization not eligible for line")
			return false, nil
		}

		line.AttachCustomization(c)
		return true, s.recalculate(ctx, order)
	})
}

// RemoveCustomization detaches a customization by attachment id or by
// customization item id. Anything not found is a no-op.
func (s *Service) RemoveCustomization(ctx context.Context, orderID, lineID, customizationID string) (*types.Order, error) {
	return s.mutate(ctx, orderID, "remove_customization", func(ctx context.Context, order *types.Order) (bool, error) {
		line := order.FindItem(lineID)
		if line == nil || !line.DetachCustomization(customizationID) {
			return false, nil
		}
		return true, s.recalculate(ctx, order)
	})
}

// UpdateCustomerName sets the trimmed name, clearing it when blank. Totals
// are not touched.
func (s *Service) UpdateCustomerName(ctx context.Context, orderID, name string) (*types.Order, error) {
	return s.mutate(ctx, orderID, "update_customer_name", func(ctx context.Context, order *types.Order) (bool, error) {
		before := order.CustomerName
		order.SetCustomerName(name)
		return !sameName(before, order.CustomerName), nil
	})
}

// CancelOrder moves an open order to Cancelled. Cancelling an order that is
// already Paid or Cancelled fails with types.ErrOrderClosed.
func (s *Service) CancelOrder(ctx context.Context, orderID string) (*types.Order, error) {
	order, err := s.mutate(ctx, orderID, "cancel_order", func(ctx context.Context, order *types.Order) (bool, error) {
		order.Status = types.StatusCancelled
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"order_id": order.ID, "order_number": order.OrderNumber}).Info("order cancelled")
	return order, nil
}

func sameName(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
