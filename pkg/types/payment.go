package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payment freezes the order total at the moment the bill was settled.
type Payment struct {
	ID          string        `json:"id"`
	OrderID     string        `json:"order_id"`
	Method      PaymentMethod `json:"method"`
	AmountCents int64         `json:"amount_cents"`
	Reference   *string       `json:"reference,omitempty"`
	PaidAt      time.Time     `json:"paid_at"`
}

// NewPayment builds a payment for the order's current total.
func NewPayment(o *Order, method PaymentMethod, reference string, paidAt time.Time) *Payment {
	p := &Payment{
		ID:          uuid.NewString(),
		OrderID:     o.ID,
		Method:      method,
		AmountCents: o.TotalCents,
		PaidAt:      paidAt.UTC(),
	}
	if ref := strings.TrimSpace(reference); ref != "" {
		p.Reference = &ref
	}
	return p
}

// User is a register operator.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	PinHash     string    `json:"-"`
	Role        UserRole  `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
