// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	globalMetrics Metrics
	metricsMu     sync.RWMutex
)

// Metrics records pipeline telemetry. Implementations must be safe for
// concurrent use and must never fail the request path.
type Metrics interface {
	// RecordGeneration records one completed pipeline run. Outcome is
	// "success", "rate_limited", "denied", "invalid", or "unavailable".
	RecordGeneration(ctx context.Context, feature, provider, model string, duration time.Duration, promptTokens int, outcome string)

	// RecordRateLimitHit records a rejection by scope ("user" or "tenant").
	RecordRateLimitHit(ctx context.Context, scope string)

	// RecordGateDenial records a feature gate rejection by reason.
	RecordGateDenial(ctx context.Context, feature, reason string)

	// RecordFallback records a fail-open fallback ("feature_flag" or "role").
	RecordFallback(ctx context.Context, lookup string)
}

// PrometheusMetrics implements Metrics over OTel instruments. The zero
// value no-ops every method.
type PrometheusMetrics struct {
	generationDuration metric.Float64Histogram
	generationsTotal   metric.Int64Counter
	promptTokensTotal  metric.Int64Counter
	rateLimitHitsTotal metric.Int64Counter
	gateDenialsTotal   metric.Int64Counter
	fallbacksTotal     metric.Int64Counter
}

func (m *PrometheusMetrics) RecordGeneration(ctx context.Context, feature, provider, model string, duration time.Duration, promptTokens int, outcome string) {
	if m == nil || m.generationDuration == nil || m.generationsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("feature", feature),
		attribute.String("provider", provider),
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	}

	m.generationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.generationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	if promptTokens > 0 && m.promptTokensTotal != nil {
		m.promptTokensTotal.Add(ctx, int64(promptTokens), metric.WithAttributes(
			attribute.String("feature", feature),
			attribute.String("model", model),
		))
	}
}

func (m *PrometheusMetrics) RecordRateLimitHit(ctx context.Context, scope string) {
	if m == nil || m.rateLimitHitsTotal == nil {
		return
	}
	m.rateLimitHitsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", scope)))
}

func (m *PrometheusMetrics) RecordGateDenial(ctx context.Context, feature, reason string) {
	if m == nil || m.gateDenialsTotal == nil {
		return
	}
	m.gateDenialsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("feature", feature),
		attribute.String("reason", reason),
	))
}

func (m *PrometheusMetrics) RecordFallback(ctx context.Context, lookup string) {
	if m == nil || m.fallbacksTotal == nil {
		return
	}
	m.fallbacksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("lookup", lookup)))
}

// SetGlobalMetrics installs the process-wide metrics recorder.
func SetGlobalMetrics(m Metrics) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = m
}

// GetGlobalMetrics returns the process-wide metrics recorder, or nil
// when none is installed.
func GetGlobalMetrics() Metrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return globalMetrics
}
