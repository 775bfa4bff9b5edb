package types

import "fmt"

// OrderStatus is the lifecycle state of an order. Open is initial; Paid and
// Cancelled are terminal.
type OrderStatus string

const (
	StatusOpen      OrderStatus = "Open"
	StatusPaid      OrderStatus = "Paid"
	StatusCancelled OrderStatus = "Cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// OrderType describes how the order is served.
type OrderType string

const (
	OrderDineIn   OrderType = "DineIn"
	OrderTakeaway OrderType = "Takeaway"
	OrderDelivery OrderType = "Delivery"
)

// OrderTypes lists every order type.
var OrderTypes = []OrderType{OrderDineIn, OrderTakeaway, OrderDelivery}

// ParseOrderType accepts the canonical names; empty means DineIn.
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(s) {
	case "":
		return OrderDineIn, nil
	case OrderDineIn, OrderTakeaway, OrderDelivery:
		return OrderType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrderType, s)
}

// PaymentMethod is how a bill was settled.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentCard PaymentMethod = "Card"
	PaymentUpi  PaymentMethod = "Upi"
	PaymentGift PaymentMethod = "Gift"
)

// PaymentMethods lists every method in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentUpi, PaymentGift}

// ParsePaymentMethod validates a method name.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, m := range PaymentMethods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
}

// UserRole controls which screens a user may open.
type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RoleManager UserRole = "Manager"
	RoleCashier UserRole = "Cashier"
)

// ParseUserRole validates a role name.
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case RoleAdmin, RoleManager, RoleCashier:
		return UserRole(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// CanViewReports reports whether the role may open sales reports.
func (r UserRole) CanViewReports() bool {
	return r == RoleAdmin || r == RoleManager
}
