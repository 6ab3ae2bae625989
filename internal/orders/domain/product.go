package domain

import "fmt"

// InsufficientStockError reports a stock reduction beyond what is available.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

// Product represents a sellable item in the catalog. Availability is an
// independent flag: a product may be unavailable even with stock on hand.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	IsAvailable   bool    `json:"isAvailable"`
	Category      string  `json:"category"`
	StockQuantity int     `json:"stockQuantity"`
}

// HasEnoughStock reports whether stock covers the requested quantity.
func (p *Product) HasEnoughStock(requested int) bool {
	return p.StockQuantity >= requested
}

// ReduceStock decrements stock by quantity. On failure nothing is decremented.
func (p *Product) ReduceStock(quantity int) error {
	if !p.HasEnoughStock(quantity) {
		return &InsufficientStockError{Available: p.StockQuantity, Requested: quantity}
	}
	p.StockQuantity -= quantity
	return nil
}

// AddStock increments stock by quantity. There is no upper bound.
func (p *Product) AddStock(quantity int) {
	p.StockQuantity += quantity
}

// FormattedPrice renders the price with its currency symbol. Display helper
// only, never used for computation.
func (p *Product) FormattedPrice() string {
	return fmt.Sprintf("%s %.2f", p.Currency, p.Price)
}
