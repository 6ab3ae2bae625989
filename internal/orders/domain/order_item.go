package domain

import "time"

// OrderItem is one product line within an order. Product details are captured
// as a snapshot at add time; the item holds no live reference back to the
// product, so stock checks belong to the caller.
type OrderItem struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	TotalPrice  float64   `json:"totalPrice"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewOrderItem snapshots the product's id, name and unit price and derives
// the line total. No validation happens here: quantity and stock sufficiency
// are the responsibility of the order or store layer.
func NewOrderItem(product Product, quantity int) OrderItem {
	now := time.Now().UTC()
	item := OrderItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.TotalPrice = item.calculateTotalPrice()
	return item
}

// UpdateQuantity sets the quantity and recomputes the line total.
func (i *OrderItem) UpdateQuantity(quantity int) {
	i.Quantity = quantity
	i.TotalPrice = i.calculateTotalPrice()
	i.UpdatedAt = time.Now().UTC()
}

func (i *OrderItem) calculateTotalPrice() float64 {
	return float64(i.Quantity) * i.UnitPrice
}
