package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/metrics"
	"github.com/glassgo/planning-api/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd SubmitOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "SubmitOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordSubmissionDuration(ctx, duration)
		o.metrics.RecordOrderSubmitted(ctx, success)
	}()

	o.logger.InfoContext(ctx, "submitting order",
		"line_count", len(cmd.Order.Items),
		"item_count", cmd.Order.ItemCount(),
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to submit order",
			"error", err,
			"line_count", len(cmd.Order.Items),
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.Int64("order.id", order.ID),
		attribute.String("order.number", order.OrderNumber),
		attribute.String("order.status", string(order.Status)),
		attribute.Float64("order.total", order.Total),
	)
	o.metrics.RecordOrderTotal(ctx, order.Total)

	o.logger.InfoContext(ctx, "order submitted successfully",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"total", order.Total,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}
