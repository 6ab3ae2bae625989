package domain

import (
	"errors"
	"fmt"
	"time"
)

// DefaultVATRate is the fractional tax rate applied when none is configured.
const DefaultVATRate = 0.18

// Order is the purchase aggregate: line items plus delivery details and three
// derived monetary fields. Subtotal, VATAmount and Total are recomputed
// synchronously after every item mutation and are never stale relative to the
// item list. Monetary values keep full float64 precision; rounding is a
// display concern.
type Order struct {
	ID                  int64               `json:"id"`
	OrderNumber         string              `json:"orderNumber"`
	Status              OrderStatus         `json:"status"`
	Items               []OrderItem         `json:"items"`
	DeliveryInformation DeliveryInformation `json:"deliveryInformation"`
	Subtotal            float64             `json:"subtotal"`
	VATRate             float64             `json:"vatRate"`
	VATAmount           float64             `json:"vatAmount"`
	Total               float64             `json:"total"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// NewOrder returns an empty DRAFT order with zero totals. A vatRate of zero
// or less falls back to DefaultVATRate.
func NewOrder(vatRate float64) *Order {
	if vatRate <= 0 {
		vatRate = DefaultVATRate
	}
	now := time.Now().UTC()
	order := &Order{
		Status:    StatusDraft,
		Items:     []OrderItem{},
		VATRate:   vatRate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.calculateTotals()
	return order
}

// AddItem appends the item, or merges quantities into the existing line when
// one already exists for the same product. The existing line instance is
// kept; the incoming item is discarded after the merge.
func (o *Order) AddItem(item OrderItem) {
	if existing := o.findItem(item.ProductID); existing != nil {
		existing.UpdateQuantity(existing.Quantity + item.Quantity)
	} else {
		o.Items = append(o.Items, item)
	}
	o.calculateTotals()
}

// RemoveItem drops the line for the given product. Removing a product that
// is not in the order is a no-op.
func (o *Order) RemoveItem(productID int64) {
	kept := o.Items[:0]
	for _, item := range o.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	o.Items = kept
	o.calculateTotals()
}

// UpdateItemQuantity sets the quantity of the line for the given product and
// recomputes totals. Unknown products are a silent no-op.
func (o *Order) UpdateItemQuantity(productID int64, quantity int) {
	item := o.findItem(productID)
	if item == nil {
		return
	}
	item.UpdateQuantity(quantity)
	o.calculateTotals()
}

// Item returns a copy of the line for the given product, if present.
func (o *Order) Item(productID int64) (OrderItem, bool) {
	if item := o.findItem(productID); item != nil {
		return *item, true
	}
	return OrderItem{}, false
}

// ItemCount is the total quantity across all lines, as opposed to the number
// of distinct lines.
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// Recalculate recomputes every line total and the order totals. Used after
// decoding an order from the wire, where derived fields are untrusted.
func (o *Order) Recalculate() {
	for i := range o.Items {
		o.Items[i].TotalPrice = o.Items[i].calculateTotalPrice()
	}
	o.calculateTotals()
}

// Clone returns a deep copy of the order. Mutating the copy, including its
// item list, leaves the original untouched.
func (o *Order) Clone() *Order {
	clone := *o
	clone.Items = make([]OrderItem, len(o.Items))
	copy(clone.Items, o.Items)
	return &clone
}

// Validate ensures the order adheres to business constraints before it is
// submitted or persisted.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	if o.VATRate < 0 {
		return errors.New("vat rate must not be negative")
	}
	for _, item := range o.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("item for product %d: quantity must be at least 1", item.ProductID)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("item for product %d: unit price must not be negative", item.ProductID)
		}
	}
	if !o.Status.IsValid() {
		return fmt.Errorf("unknown order status %q", o.Status)
	}
	return nil
}

func (o *Order) findItem(productID int64) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

func (o *Order) calculateTotals() {
	subtotal := 0.0
	for _, item := range o.Items {
		subtotal += item.TotalPrice
	}
	o.Subtotal = subtotal
	o.VATAmount = subtotal * o.VATRate
	o.Total = subtotal + o.VATAmount
}
