package types

import "errors"

// Domain errors. Callers match them with errors.Is; field detail is added by
// wrapping, e.g. fmt.Errorf("%w: name is required", ErrValidation).
var (
	// Validation errors
	ErrValidation        = errors.New("validation failed")
	ErrInvalidAssignment = errors.New("assignment must target a menu item or a menu category")
	ErrInvalidOrderType  = errors.New("invalid order type")
	ErrInvalidMethod     = errors.New("invalid payment method")
	ErrInvalidRole       = errors.New("invalid user role")
	ErrInvalidQuantity   = errors.New("quantity out of range")

	// Order lifecycle errors
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderClosed   = errors.New("order is not open")
	ErrEmptyOrder    = errors.New("order has no items")

	// Authentication
	ErrInvalidPIN = errors.New("invalid PIN")
)
