package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/glassgo/planning-api/internal/orders/adapters/memory"
	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/ports"
)

func storedOrder(t *testing.T, repo *memory.Repository, number string, createdAt time.Time) *domain.Order {
	t.Helper()
	order := domain.NewOrder(0.18)
	order.OrderNumber = number
	order.Status = domain.StatusPending
	order.CreatedAt = createdAt
	created, err := repo.Create(context.Background(), *order)
	if err != nil {
		t.Fatalf("create order %s: %v", number, err)
	}
	return created
}

func TestListReturnsNewestFirst(t *testing.T) {
	repo := memory.NewRepository()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	storedOrder(t, repo, "ORD-AAAA0001", base)
	storedOrder(t, repo, "ORD-AAAA0002", base.Add(2*time.Hour))
	storedOrder(t, repo, "ORD-AAAA0003", base.Add(time.Hour))

	orders, err := repo.List(context.Background(), ports.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	want := []string{"ORD-AAAA0002", "ORD-AAAA0003", "ORD-AAAA0001"}
	for i, number := range want {
		if orders[i].OrderNumber != number {
			t.Errorf("orders[%d] = %s, want %s", i, orders[i].OrderNumber, number)
		}
	}
}

func TestListBreaksCreatedAtTiesByID(t *testing.T) {
	repo := memory.NewRepository()
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	first := storedOrder(t, repo, "ORD-BBBB0001", at)
	second := storedOrder(t, repo, "ORD-BBBB0002", at)

	orders, err := repo.List(context.Background(), ports.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != second.ID || orders[1].ID != first.ID {
		t.Errorf("expected IDs [%d %d], got [%d %d]", second.ID, first.ID, orders[0].ID, orders[1].ID)
	}
}
