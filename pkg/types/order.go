package types

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/posengine/internal/money"
)

// NotesSeparator joins customization names in a line's notes string.
const NotesSeparator = ", "

// MaxQuantity is the largest quantity a single order line may carry.
const MaxQuantity = 9999

// Order is the aggregate root of a ticket. Subtotal, tax, discount and total
// are derived: Recalculate rebuilds them from the lines and nothing else
// writes them.
type Order struct {
	ID              string      `json:"id"`
	OrderNumber     int         `json:"order_number"`
	OrderType       OrderType   `json:"order_type"`
	Status          OrderStatus `json:"status"`
	CreatedByUserID string      `json:"created_by_user_id"`
	CreatedAt       time.Time   `json:"created_at"`
	CustomerName    *string     `json:"customer_name,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
	SubtotalCents   int64       `json:"subtotal_cents"`
	TaxCents        int64       `json:"tax_cents"`
	DiscountCents   int64       `json:"discount_cents"`
	TotalCents      int64       `json:"total_cents"`

	// Version is the optimistic concurrency token; storage bumps it on every save.
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`

	Items    []*OrderItem `json:"items"`
	Payments []*Payment   `json:"payments,omitempty"`
}

// OrderItem is one line on a ticket.
type OrderItem struct {
	ID             string `json:"id"`
	OrderID        string `json:"order_id"`
	MenuItemID     string `json:"menu_item_id"`
	NameSnapshot   string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Qty            int    `json:"qty"`
	LineTotalCents int64  `json:"line_total_cents"`
	Notes          string `json:"notes,omitempty"`

	// Customizations are kept in attachment order.
	Customizations []*OrderItemCustomization `json:"customizations,omitempty"`
}

// OrderItemCustomization is a customization snapshot attached to a line.
type OrderItemCustomization struct {
	ID                  string `json:"id"`
	OrderItemID         string `json:"order_item_id"`
	CustomizationItemID string `json:"customization_item_id"`
	NameSnapshot        string `json:"name"`
	PriceCents          int64  `json:"price_cents"`
}

// NewOrder builds an empty open order. createdAt is stored in UTC.
func NewOrder(number int, orderType OrderType, userID string, createdAt time.Time) *Order {
	createdAt = createdAt.UTC()
	return &Order{
		ID:              uuid.NewString(),
		OrderNumber:     number,
		OrderType:       orderType,
		Status:          StatusOpen,
		CreatedByUserID: userID,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
		Items:           make([]*OrderItem, 0),
	}
}

// IsOpen reports whether the order still accepts mutations.
func (o *Order) IsOpen() bool {
	return o.Status == StatusOpen
}

// FindItem returns the line with the given id, or nil.
func (o *Order) FindItem(lineID string) *OrderItem {
	for _, item := range o.Items {
		if item.ID == lineID {
			return item
		}
	}
	return nil
}

// AddLine appends a fresh quantity-1 line snapshotting the menu item.
func (o *Order) AddLine(menu *MenuItem) *OrderItem {
	item := &OrderItem{
		ID:             uuid.NewString(),
		OrderID:        o.ID,
		MenuItemID:     menu.ID,
		NameSnapshot:   menu.Name,
		UnitPriceCents: menu.PriceCents,
		Qty:            1,
		LineTotalCents: menu.PriceCents,
	}
	o.Items = append(o.Items, item)
	return item
}

// RemoveLine drops a line and its customizations. It reports whether the
// line existed.
func (o *Order) RemoveLine(lineID string) bool {
	for i, item := range o.Items {
		if item.ID == lineID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			return true
		}
	}
	return false
}

// MenuItemIDs returns the distinct menu item ids referenced by the lines.
func (o *Order) MenuItemIDs() []string {
	seen := make(map[string]bool, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if !seen[item.MenuItemID] {
			seen[item.MenuItemID] = true
			ids = append(ids, item.MenuItemID)
		}
	}
	return ids
}

// Recalculate rebuilds every line total and the order totals from scratch.
// taxRates maps menu item id to its tax rate in basis points; a line whose
// menu item is missing from the map is untaxed.
func (o *Order) Recalculate(taxRates map[string]int) {
	var subtotal, tax int64
	for _, item := range o.Items {
		item.recalculate()
		subtotal += item.LineTotalCents
		if rate, ok := taxRates[item.MenuItemID]; ok {
			tax += money.Tax(item.LineTotalCents, rate)
		}
	}
	o.SubtotalCents = subtotal
	o.TaxCents = tax
	o.TotalCents = subtotal + tax - o.DiscountCents
}

// SetCustomerName trims name and stores nil for blank input.
func (o *Order) SetCustomerName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		o.CustomerName = nil
		return
	}
	o.CustomerName = &name
}

// FindCustomization matches either the attachment id or the customization
// item id, first match in attachment order.
func (i *OrderItem) FindCustomization(id string) *OrderItemCustomization {
	for _, c := range i.Customizations {
		if c.ID == id || c.CustomizationItemID == id {
			return c
		}
	}
	return nil
}

// HasCustomizationItem reports whether the customization is already attached.
func (i *OrderItem) HasCustomizationItem(customizationItemID string) bool {
	for _, c := range i.Customizations {
		if c.CustomizationItemID == customizationItemID {
			return true
		}
	}
	return false
}

// AttachCustomization appends a snapshot of c and refreshes the notes.
func (i *OrderItem) AttachCustomization(c *CustomizationItem) *OrderItemCustomization {
	attached := &OrderItemCustomization{
		ID:                  uuid.NewString(),
		OrderItemID:         i.ID,
		CustomizationItemID: c.ID,
		NameSnapshot:        c.Name,
		PriceCents:          c.PriceCents,
	}
	i.Customizations = append(i.Customizations, attached)
	i.RefreshNotes()
	return attached
}

// DetachCustomization removes the attachment matching id (see
// FindCustomization) and refreshes the notes. It reports whether anything
// was removed.
func (i *OrderItem) DetachCustomization(id string) bool {
	target := i.FindCustomization(id)
	if target == nil {
		return false
	}
	for idx, c := range i.Customizations {
		if c == target {
			i.Customizations = append(i.Customizations[:idx], i.Customizations[idx+1:]...)
			break
		}
	}
	i.RefreshNotes()
	return true
}

// RefreshNotes regenerates the notes string from the attached names.
func (i *OrderItem) RefreshNotes() {
	names := make([]string, 0, len(i.Customizations))
	for _, c := range i.Customizations {
		names = append(names, c.NameSnapshot)
	}
	i.Notes = strings.Join(names, NotesSeparator)
}

// SortedCustomizations returns the attachments ordered by name for display.
func (i *OrderItem) SortedCustomizations() []*OrderItemCustomization {
	sorted := make([]*OrderItemCustomization, len(i.Customizations))
	copy(sorted, i.Customizations)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].NameSnapshot < sorted[b].NameSnapshot
	})
	return sorted
}

// DisplayCopy returns a copy of the order whose lines list customizations
// by name. Lines are copied so the receiver keeps attachment order.
func (o *Order) DisplayCopy() *Order {
	out := *o
	out.Items = make([]*OrderItem, len(o.Items))
	for idx, item := range o.Items {
		line := *item
		line.Customizations = item.SortedCustomizations()
		out.Items[idx] = &line
	}
	return &out
}

// UnitTotalCents is the unit price plus all customization deltas.
func (i *OrderItem) UnitTotalCents() int64 {
	return money.LineTotal(i.UnitPriceCents, i.deltas(), 1)
}

func (i *OrderItem) recalculate() {
	i.LineTotalCents = money.LineTotal(i.UnitPriceCents, i.deltas(), i.Qty)
}

func (i *OrderItem) deltas() []int64 {
	deltas := make([]int64, len(i.Customizations))
	for idx, c := range i.Customizations {
		deltas[idx] = c.PriceCents
	}
	return deltas
}
