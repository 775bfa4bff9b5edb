package types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/posengine/internal/money"
)

func strPtr(s string) *string { return &s }

func TestCustomizationAssignment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		a       CustomizationAssignment
		wantErr error
	}{
		{"menu item target", CustomizationAssignment{CustomizationItemID: "c", MenuItemID: strPtr("m")}, nil},
		{"category target", CustomizationAssignment{CustomizationItemID: "c", MenuCategoryID: strPtr("cat")}, nil},
		{"both targets", CustomizationAssignment{CustomizationItemID: "c", MenuItemID: strPtr("m"), MenuCategoryID: strPtr("cat")}, nil},
		{"no target", CustomizationAssignment{CustomizationItemID: "c"}, ErrInvalidAssignment},
		{"blank targets", CustomizationAssignment{CustomizationItemID: "c", MenuItemID: strPtr(" "), MenuCategoryID: strPtr("")}, ErrInvalidAssignment},
		{"no customization", CustomizationAssignment{MenuItemID: strPtr("m")}, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.a.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMenuItem_Validate(t *testing.T) {
	valid := MenuItem{CategoryID: "c", Name: "Fries", PriceCents: 299, TaxRateBps: 500}
	assert.NoError(t, valid.Validate())
	ceiling := MenuItem{CategoryID: "c", Name: "Caviar", PriceCents: money.MaxPriceCents, TaxRateBps: 500}
	assert.NoError(t, ceiling.Validate())

	bad := []MenuItem{
		{CategoryID: "c", Name: " ", PriceCents: 1},
		{Name: "Fries", PriceCents: 1},
		{CategoryID: "c", Name: "Fries", PriceCents: -1},
		{CategoryID: "c", Name: "Fries", PriceCents: money.MaxPriceCents + 1},
		{CategoryID: "c", Name: "Fries", PriceCents: 1 << 50},
		{CategoryID: "c", Name: "Fries", TaxRateBps: 10001},
		{CategoryID: "c", Name: "Fries", TaxRateBps: -5},
	}
	for _, item := range bad {
		assert.ErrorIs(t, item.Validate(), ErrValidation)
	}
}

func TestCategoryAndCustomization_Validate(t *testing.T) {
	assert.ErrorIs(t, (&MenuCategory{Name: ""}).Validate(), ErrValidation)
	assert.NoError(t, (&MenuCategory{Name: "Drinks"}).Validate())

	assert.ErrorIs(t, (&CustomizationItem{Name: "x", PriceCents: -1}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&CustomizationItem{Name: "x", PriceCents: money.MaxPriceCents + 1}).Validate(), ErrValidation)
	assert.NoError(t, (&CustomizationItem{Name: "Gold Leaf", PriceCents: money.MaxPriceCents}).Validate())
	assert.NoError(t, (&CustomizationItem{Name: "No Cheese"}).Validate())
}

func TestEnums(t *testing.T) {
	ot, err := ParseOrderType("")
	assert.NoError(t, err)
	assert.Equal(t, OrderDineIn, ot)
	_, err = ParseOrderType("Drone")
	assert.ErrorIs(t, err, ErrInvalidOrderType)

	m, err := ParsePaymentMethod("Upi")
	assert.NoError(t, err)
	assert.Equal(t, PaymentUpi, m)
	_, err = ParsePaymentMethod("cash")
	assert.ErrorIs(t, err, ErrInvalidMethod)

	_, err = ParseUserRole("Owner")
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.True(t, RoleManager.CanViewReports())
	assert.False(t, RoleCashier.CanViewReports())

	assert.True(t, StatusPaid.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusOpen.IsTerminal())
}
