package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/ports"
	"github.com/google/uuid"
)

// SubmitOrderCommand carries a draft order for creation. Derived monetary
// fields on the incoming order are untrusted and recomputed server-side.
type SubmitOrderCommand struct {
	Order domain.Order
}

func (c SubmitOrderCommand) Validate() error {
	if len(c.Order.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	return nil
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd SubmitOrderCommand) (*domain.Order, error)
}

type SubmitOrderCommandHandler struct {
	repo     ports.OrderRepository
	products ports.ProductRepository
	events   ports.EventBus
	vatRate  float64
}

// NewSubmitOrderCommandHandler wires dependencies. vatRate is applied to
// orders submitted without one.
func NewSubmitOrderCommandHandler(
	repo ports.OrderRepository,
	products ports.ProductRepository,
	events ports.EventBus,
	vatRate float64,
) *SubmitOrderCommandHandler {
	if vatRate <= 0 {
		vatRate = domain.DefaultVATRate
	}
	return &SubmitOrderCommandHandler{
		repo:     repo,
		products: products,
		events:   events,
		vatRate:  vatRate,
	}
}

func (h *SubmitOrderCommandHandler) Handle(ctx context.Context, cmd SubmitOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order := cmd.Order.Clone()
	if order.VATRate <= 0 {
		order.VATRate = h.vatRate
	}
	order.Recalculate()
	if order.Status == "" {
		order.Status = domain.StatusDraft
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	// Every line is checked before any stock is decremented, so a rejected
	// order never leaves the catalog partially reduced.
	for _, item := range order.Items {
		product, err := h.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, err)
		}
		if !product.IsAvailable {
			return nil, fmt.Errorf("product %q is not available", product.Name)
		}
		if !product.HasEnoughStock(item.Quantity) {
			return nil, fmt.Errorf("product %q: %w", product.Name,
				&domain.InsufficientStockError{Available: product.StockQuantity, Requested: item.Quantity})
		}
	}
	var applied []domain.OrderItem
	for _, item := range order.Items {
		if err := h.products.ReduceStock(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, h.restock(ctx, applied, fmt.Errorf("reduce stock for product %d: %w", item.ProductID, err))
		}
		applied = append(applied, item)
	}

	now := time.Now().UTC()
	order.OrderNumber = generateOrderNumber()
	order.Status = domain.StatusPending
	order.CreatedAt = now
	order.UpdatedAt = now

	created, err := h.repo.Create(ctx, *order)
	if err != nil {
		return nil, h.restock(ctx, applied, err)
	}

	if err := h.events.PublishOrderCreated(ctx, created.ID, created.OrderNumber); err != nil {
		return created, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return created, nil
}

// restock adds back the decrements applied before a failed submission, so
// the catalog never stays reduced without a persisted order. It returns the
// cause, with any compensation failures joined onto it. Compensation runs
// even when the cause was a cancelled context.
func (h *SubmitOrderCommandHandler) restock(ctx context.Context, applied []domain.OrderItem, cause error) error {
	ctx = context.WithoutCancel(ctx)
	for _, item := range applied {
		if err := h.products.AddStock(ctx, item.ProductID, item.Quantity); err != nil {
			cause = errors.Join(cause, fmt.Errorf("restore stock for product %d: %w", item.ProductID, err))
		}
	}
	return cause
}

func generateOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}
