package ports

import (
	"context"

	"github.com/glassgo/planning-api/internal/orders/domain"
)

// EventBus defines the contract for publishing order lifecycle events.
type EventBus interface {
	PublishOrderCreated(ctx context.Context, orderID int64, orderNumber string) error
	PublishOrderStatusChanged(ctx context.Context, orderID int64, status domain.OrderStatus) error
}
