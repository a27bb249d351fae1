package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/teamhub"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Bulk archive/restore metrics
	BulkItemsTotal metric.Int64Counter
	BulkDuration   metric.Float64Histogram

	// Billing quota metrics
	QuotaRejectionsTotal metric.Int64Counter

	// Notification metrics
	NotificationsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// RecordBulkItem counts one processed item of a bulk operation.
func (m *Metrics) RecordBulkItem(ctx context.Context, operation, status string) {
	m.BulkItemsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

// RecordQuotaRejection counts a create refused by the billing plan ceiling.
func (m *Metrics) RecordQuotaRejection(ctx context.Context, resource string) {
	m.QuotaRejectionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("resource", resource)))
}

// RecordNotification counts a notification delivery outcome.
func (m *Metrics) RecordNotification(ctx context.Context, event, outcome string) {
	m.NotificationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	))
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.BulkItemsTotal, _ = meter.Int64Counter(
		"teamhub.bulk.items.total",
		metric.WithDescription("Total number of projects processed by bulk archive and restore"),
		metric.WithUnit("{project}"),
	)

	m.BulkDuration, _ = meter.Float64Histogram(
		"teamhub.bulk.duration",
		metric.WithDescription("Duration of bulk archive and restore operations"),
		metric.WithUnit("ms"),
	)

	m.QuotaRejectionsTotal, _ = meter.Int64Counter(
		"teamhub.quota.rejections.total",
		metric.WithDescription("Total number of creates rejected by billing plan limits"),
		metric.WithUnit("{rejection}"),
	)

	m.NotificationsTotal, _ = meter.Int64Counter(
		"teamhub.notifications.total",
		metric.WithDescription("Total number of notification deliveries by outcome"),
		metric.WithUnit("{notification}"),
	)

	return m
}
