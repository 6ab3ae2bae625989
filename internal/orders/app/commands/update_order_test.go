package commands_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/glassgo/planning-api/internal/orders/app/commands"
	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/ports"
)

func persistedOrder() *domain.Order {
	order := domain.NewOrder(0.18)
	order.AddItem(domain.NewOrderItem(domain.Product{ID: 1, Name: "Crate", Price: 10}, 2))
	order.ID = 42
	order.OrderNumber = "ORD-AAAA1111"
	order.Status = domain.StatusPending
	return order
}

func TestUpdateOrder(t *testing.T) {
	t.Run("replaces items and recomputes totals", func(t *testing.T) {
		existing := persistedOrder()
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Order, error) {
				return existing.Clone(), nil
			},
		}
		handler := commands.NewUpdateOrderCommandHandler(repo, &mockEventBus{})

		incoming := *existing.Clone()
		incoming.UpdateItemQuantity(1, 5)
		incoming.Subtotal = 999 // stale derived field from the wire

		updated, err := handler.Handle(context.Background(), commands.UpdateOrderCommand{Order: incoming})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if updated.Subtotal != 50 {
			t.Errorf("expected subtotal 50, got %v", updated.Subtotal)
		}
		if updated.OrderNumber != existing.OrderNumber {
			t.Errorf("order number changed: %q", updated.OrderNumber)
		}
	})

	t.Run("rejects missing id", func(t *testing.T) {
		handler := commands.NewUpdateOrderCommandHandler(&mockRepository{}, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.UpdateOrderCommand{Order: *domain.NewOrder(0.18)})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("returns not found for unknown order", func(t *testing.T) {
		handler := commands.NewUpdateOrderCommandHandler(&mockRepository{}, &mockEventBus{})

		order := persistedOrder()
		_, err := handler.Handle(context.Background(), commands.UpdateOrderCommand{Order: *order})
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("allows legal status transition and publishes event", func(t *testing.T) {
		existing := persistedOrder()
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Order, error) {
				return existing.Clone(), nil
			},
		}
		events := &mockEventBus{}
		handler := commands.NewUpdateOrderCommandHandler(repo, events)

		incoming := *existing.Clone()
		incoming.Status = domain.StatusConfirmed

		updated, err := handler.Handle(context.Background(), commands.UpdateOrderCommand{Order: incoming})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if updated.Status != domain.StatusConfirmed {
			t.Errorf("expected status %s, got %s", domain.StatusConfirmed, updated.Status)
		}
		if len(events.statusChanges) != 1 || events.statusChanges[0] != domain.StatusConfirmed {
			t.Errorf("expected one CONFIRMED event, got %v", events.statusChanges)
		}
	})

	t.Run("rejects illegal status transition", func(t *testing.T) {
		existing := persistedOrder()
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Order, error) {
				return existing.Clone(), nil
			},
		}
		handler := commands.NewUpdateOrderCommandHandler(repo, &mockEventBus{})

		incoming := *existing.Clone()
		incoming.Status = domain.StatusDelivered

		_, err := handler.Handle(context.Background(), commands.UpdateOrderCommand{Order: incoming})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "illegal status transition") {
			t.Errorf("expected transition error, got: %v", err)
		}
	})
}
