package ports

import (
	"context"

	"github.com/glassgo/planning-api/internal/orders/domain"
)

// ProductRepository exposes catalog persistence operations. ReduceStock must
// be all-or-nothing: when stock does not cover the quantity it fails with a
// domain.InsufficientStockError and leaves the stored quantity untouched.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	ReduceStock(ctx context.Context, id int64, quantity int) error
	AddStock(ctx context.Context, id int64, quantity int) error
}
