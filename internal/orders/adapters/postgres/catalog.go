package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `
	id, name, description, price, currency, is_available, category, stock_quantity
`

type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	var product domain.Product
	err := c.pool.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Currency,
		&product.IsAvailable,
		&product.Category,
		&product.StockQuantity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrProductNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}

	return &product, nil
}

func (c *Catalog) List(ctx context.Context) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY id`, productColumns)

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Currency,
			&product.IsAvailable,
			&product.Category,
			&product.StockQuantity,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// ReduceStock decrements stock atomically. The guard in the WHERE clause
// keeps concurrent submissions from driving stock negative.
func (c *Catalog) ReduceStock(ctx context.Context, id int64, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $1
		WHERE id = $2 AND stock_quantity >= $1
	`

	result, err := c.pool.Exec(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("reduce stock: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	// Distinguish a missing product from an insufficient balance.
	var available int
	err = c.pool.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, id).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.ErrProductNotFound
		}
		return fmt.Errorf("select stock: %w", err)
	}
	return &domain.InsufficientStockError{Available: available, Requested: quantity}
}

func (c *Catalog) AddStock(ctx context.Context, id int64, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $1
		WHERE id = $2
	`

	result, err := c.pool.Exec(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("add stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ports.ErrProductNotFound
	}
	return nil
}
