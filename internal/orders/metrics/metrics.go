package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersSubmittedTotal    metric.Int64Counter
	orderSubmissionDuration metric.Float64Histogram
	orderTotalAmount        metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersSubmittedTotal, err = meter.Int64Counter(
		"orders_submitted_total",
		metric.WithDescription("Total number of orders submitted"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_submitted_total counter: %w", err)
	}

	m.orderSubmissionDuration, err = meter.Float64Histogram(
		"order_submission_duration_seconds",
		metric.WithDescription("Duration of order submission operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_submission_duration histogram: %w", err)
	}

	m.orderTotalAmount, err = meter.Float64Histogram(
		"order_total_amount",
		metric.WithDescription("VAT-inclusive total of submitted orders"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_total_amount histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderSubmitted(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersSubmittedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordSubmissionDuration(ctx context.Context, durationSeconds float64) {
	m.orderSubmissionDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordOrderTotal(ctx context.Context, total float64) {
	m.orderTotalAmount.Record(ctx, total)
}
