package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `
	id, order_number, status, subtotal, vat_rate, vat_amount, total,
	delivery_date, delivery_time, delivery_address, special_instructions,
	created_at, updated_at
`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, order domain.Order) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (
			order_number, status, subtotal, vat_rate, vat_amount, total,
			delivery_date, delivery_time, delivery_address, special_instructions,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	created := *order.Clone()
	err = tx.QueryRow(ctx, query,
		created.OrderNumber,
		created.Status,
		created.Subtotal,
		created.VATRate,
		created.VATAmount,
		created.Total,
		created.DeliveryInformation.DeliveryDate,
		created.DeliveryInformation.DeliveryTime,
		created.DeliveryInformation.DeliveryAddress,
		created.DeliveryInformation.SpecialInstructions,
		created.CreatedAt,
		created.UpdatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if err := insertItems(ctx, tx, created.ID, created.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &created, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	var order domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&order)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}

	return &order, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, orderColumns)

	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query, statusFilter, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []int64
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(scanTargets(&order)...); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderItem{}
		}
	}

	return orders, nil
}

func (r *Repository) Update(ctx context.Context, order domain.Order) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	updated := *order.Clone()
	updated.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE orders
		SET status = $1, subtotal = $2, vat_rate = $3, vat_amount = $4, total = $5,
			delivery_date = $6, delivery_time = $7, delivery_address = $8,
			special_instructions = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := tx.Exec(ctx, query,
		updated.Status,
		updated.Subtotal,
		updated.VATRate,
		updated.VATAmount,
		updated.Total,
		updated.DeliveryInformation.DeliveryDate,
		updated.DeliveryInformation.DeliveryTime,
		updated.DeliveryInformation.DeliveryAddress,
		updated.DeliveryInformation.SpecialInstructions,
		updated.UpdatedAt,
		updated.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ports.ErrNotFound
	}

	// Order lines are replaced wholesale on update.
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, updated.ID); err != nil {
		return nil, fmt.Errorf("delete order items: %w", err)
	}
	if err := insertItems(ctx, tx, updated.ID, updated.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &updated, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, total_price,
			created_at, updated_at
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		var orderID int64
		if err := rows.Scan(
			&item.ID,
			&orderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID int64, items []domain.OrderItem) error {
	query := `
		INSERT INTO order_items (
			order_id, product_id, product_name, quantity, unit_price, total_price,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	for i := range items {
		err := tx.QueryRow(ctx, query,
			orderID,
			items[i].ProductID,
			items[i].ProductName,
			items[i].Quantity,
			items[i].UnitPrice,
			items[i].TotalPrice,
			items[i].CreatedAt,
			items[i].UpdatedAt,
		).Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func scanTargets(order *domain.Order) []any {
	return []any{
		&order.ID,
		&order.OrderNumber,
		&order.Status,
		&order.Subtotal,
		&order.VATRate,
		&order.VATAmount,
		&order.Total,
		&order.DeliveryInformation.DeliveryDate,
		&order.DeliveryInformation.DeliveryTime,
		&order.DeliveryInformation.DeliveryAddress,
		&order.DeliveryInformation.SpecialInstructions,
		&order.CreatedAt,
		&order.UpdatedAt,
	}
}
