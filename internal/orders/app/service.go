package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glassgo/planning-api/internal/orders/app/commands"
	"github.com/glassgo/planning-api/internal/orders/app/queries"
	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/metrics"
	"github.com/glassgo/planning-api/internal/orders/ports"
)

// Service bundles use cases for handling orders and the product catalog.
type Service struct {
	repo          ports.OrderRepository
	products      ports.ProductRepository
	events        ports.EventBus
	idemStore     ports.IdempotencyStore
	submitHandler commands.CommandHandler
	updateHandler *commands.UpdateOrderCommandHandler
	getHandler    *queries.GetOrderQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	products ports.ProductRepository,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	vatRate float64,
) *Service {
	coreHandler := commands.NewSubmitOrderCommandHandler(repo, products, events, vatRate)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, metrics)

	return &Service{
		repo:          repo,
		products:      products,
		events:        events,
		idemStore:     idem,
		submitHandler: observableHandler,
		updateHandler: commands.NewUpdateOrderCommandHandler(repo, events),
		getHandler:    queries.NewGetOrderQueryHandler(repo),
	}
}

// SubmitOrder orchestrates order creation: validation, stock reduction,
// persistence and event emission.
func (s *Service) SubmitOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	return s.submitHandler.Handle(ctx, commands.SubmitOrderCommand{Order: order})
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.getHandler.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

// ListOrders returns orders using a filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return s.repo.List(ctx, filter)
}

// UpdateOrder replaces a persisted order, enforcing status transition rules.
func (s *Service) UpdateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	return s.updateHandler.Handle(ctx, commands.UpdateOrderCommand{Order: order})
}

// CancelOrder moves an order to CANCELLED if its current state allows it.
func (s *Service) CancelOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(domain.StatusCancelled) {
		return nil, fmt.Errorf("cannot cancel order in status %s", order.Status)
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.StatusCancelled); err != nil {
		return nil, err
	}

	order.Status = domain.StatusCancelled
	order.UpdatedAt = time.Now().UTC()

	if err := s.events.PublishOrderStatusChanged(ctx, order.ID, order.Status); err != nil {
		return order, fmt.Errorf("order cancelled but failed to publish event: %w", err)
	}

	return order, nil
}

// DeleteOrder removes an order permanently.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// GetProduct retrieves a catalog product by ID.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListProducts returns the full catalog.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
