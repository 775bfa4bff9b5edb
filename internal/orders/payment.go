package orders

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dshills/posengine/pkg/types"
)

// RecordPayment settles an open order with at least one line. Totals are
// recomputed first, so the payment amount is the order total at this
// instant; the order becomes Paid in the same save.
func (s *Service) RecordPayment(ctx context.Context, orderID string, method types.PaymentMethod, reference string) (*types.Order, error) {
	method, err := types.ParsePaymentMethod(string(method))
	if err != nil {
		return nil, err
	}

	var payment *types.Payment
	order, err := s.mutate(ctx, orderID, "record_payment", func(ctx context.Context, order *types.Order) (bool, error) {
		if len(order.Items) == 0 {
			return false, fmt.Errorf("%w: order %d has no lines", types.ErrEmptyOrder, order.OrderNumber)
		}
		if err := s.recalculate(ctx, order); err != nil {
			return false, err
		}

		payment = types.NewPayment(order, method, reference, s.now())
		order.Payments = append(order.Payments, payment)
		order.Status = types.StatusPaid
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"method":       payment.Method,
		"amount_cents": payment.AmountCents,
	}).Info("payment recorded")
	return order, nil
}
