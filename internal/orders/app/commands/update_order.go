package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/ports"
)

// UpdateOrderCommand replaces a persisted order's items, delivery details
// and, when legal per the status transition table, its status.
type UpdateOrderCommand struct {
	Order domain.Order
}

func (c UpdateOrderCommand) Validate() error {
	if c.Order.ID <= 0 {
		return errors.New("order id is required")
	}
	return nil
}

type UpdateOrderCommandHandler struct {
	repo   ports.OrderRepository
	events ports.EventBus
}

func NewUpdateOrderCommandHandler(repo ports.OrderRepository, events ports.EventBus) *UpdateOrderCommandHandler {
	return &UpdateOrderCommandHandler{repo: repo, events: events}
}

func (h *UpdateOrderCommandHandler) Handle(ctx context.Context, cmd UpdateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	existing, err := h.repo.GetByID(ctx, cmd.Order.ID)
	if err != nil {
		return nil, err
	}

	order := cmd.Order.Clone()
	order.Recalculate()

	if err := order.Validate(); err != nil {
		return nil, err
	}

	statusChanged := order.Status != existing.Status
	if statusChanged && !existing.Status.CanTransitionTo(order.Status) {
		return nil, fmt.Errorf("illegal status transition %s -> %s", existing.Status, order.Status)
	}

	// The order number and creation time are immutable once persisted.
	order.OrderNumber = existing.OrderNumber
	order.CreatedAt = existing.CreatedAt
	order.UpdatedAt = time.Now().UTC()

	updated, err := h.repo.Update(ctx, *order)
	if err != nil {
		return nil, err
	}

	if statusChanged {
		if err := h.events.PublishOrderStatusChanged(ctx, updated.ID, updated.Status); err != nil {
			return updated, fmt.Errorf("order updated but failed to publish event: %w", err)
		}
	}

	return updated, nil
}
