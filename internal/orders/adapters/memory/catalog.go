package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/ports"
)

// Catalog provides an in-memory product store useful for local development
// and tests.
type Catalog struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
}

// NewCatalog constructs a catalog pre-populated with the given products.
func NewCatalog(products ...domain.Product) *Catalog {
	c := &Catalog{products: make(map[int64]*domain.Product)}
	for _, p := range products {
		stored := p
		c.products[p.ID] = &stored
	}
	return c
}

// GetByID fetches a single product by identifier.
func (c *Catalog) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.products[id]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	p := *product
	return &p, nil
}

// List returns all products ordered by identifier.
func (c *Catalog) List(_ context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.Product, 0, len(c.products))
	for _, product := range c.products {
		result = append(result, *product)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ReduceStock decrements stock for a product, rejecting the whole request
// when fewer than quantity units remain.
func (c *Catalog) ReduceStock(_ context.Context, id int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	product, ok := c.products[id]
	if !ok {
		return ports.ErrProductNotFound
	}
	return product.ReduceStock(quantity)
}

// AddStock increments stock for a product.
func (c *Catalog) AddStock(_ context.Context, id int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	product, ok := c.products[id]
	if !ok {
		return ports.ErrProductNotFound
	}
	product.AddStock(quantity)
	return nil
}
