package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics_Disabled(t *testing.T) {
	metrics, err := InitMetrics(context.Background(), MetricsConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, metrics)

	// Disabled metrics must be safe to call.
	metrics.RecordGeneration(context.Background(), "case_summary", "openai", "gpt-4o-mini", time.Second, 100, "success")
	metrics.RecordRateLimitHit(context.Background(), "user")
	metrics.RecordGateDenial(context.Background(), "org_report", "rbac")
	metrics.RecordFallback(context.Background(), "role")
}

func TestInitMetrics_Enabled(t *testing.T) {
	metrics, err := InitMetrics(context.Background(), MetricsConfig{Enabled: true, Port: 9090})
	require.NoError(t, err)
	require.NotNil(t, metrics)

	metrics.RecordGeneration(context.Background(), "case_summary", "openai", "gpt-4o-mini", 250*time.Millisecond, 340, "success")
	metrics.RecordGeneration(context.Background(), "org_report", "openai", "gpt-4o-mini", 10*time.Millisecond, 0, "rate_limited")
	metrics.RecordRateLimitHit(context.Background(), "tenant")
	metrics.RecordGateDenial(context.Background(), "org_report", "feature_disabled")
	metrics.RecordFallback(context.Background(), "feature_flag")
}

func TestGlobalMetrics(t *testing.T) {
	defer SetGlobalMetrics(nil)

	assert.Nil(t, GetGlobalMetrics())

	SetGlobalMetrics(NoopMetrics{})
	assert.NotNil(t, GetGlobalMetrics())
}

func TestNilPrometheusMetricsSafe(t *testing.T) {
	var m *PrometheusMetrics
	m.RecordGeneration(context.Background(), "f", "p", "m", time.Second, 1, "success")
	m.RecordRateLimitHit(context.Background(), "user")
	m.RecordGateDenial(context.Background(), "f", "rbac")
	m.RecordFallback(context.Background(), "role")
}
