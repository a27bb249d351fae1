package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSampler(t *testing.T) {
	require.Equal(t, sdktrace.AlwaysSample().Description(), sampler(0).Description())
	require.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1.5).Description())
	require.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestGetMetricsIsSingleton(t *testing.T) {
	m := GetMetrics()
	require.Same(t, m, GetMetrics())

	// recording against the global no-op provider must be safe
	ctx := context.Background()
	m.RecordBulkItem(ctx, "archive", "archived")
	m.RecordQuotaRejection(ctx, "members")
	m.RecordNotification(ctx, "member.invited", "delivered")
}
