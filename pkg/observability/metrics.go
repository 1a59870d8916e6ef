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

// Package observability wires pipeline metrics through OpenTelemetry
// with a Prometheus exporter. Metric labels carry feature keys, scopes,
// and outcomes only; user identifiers and prompt content never reach a
// metric label.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// InitMetrics builds the Prometheus-backed metrics set. Disabled config
// yields a nil-instrument PrometheusMetrics whose methods no-op.
func InitMetrics(ctx context.Context, cfg MetricsConfig) (*PrometheusMetrics, error) {
	if !cfg.Enabled {
		return &PrometheusMetrics{}, nil
	}

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)

	meter := meterProvider.Meter("wellspring")

	generationDuration, err := meter.Float64Histogram(
		"wellspring_generation_duration_seconds",
		metric.WithDescription("End-to-end AI generation duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation duration histogram: %w", err)
	}

	generationsTotal, err := meter.Int64Counter(
		"wellspring_generations_total",
		metric.WithDescription("Total AI generation requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generations counter: %w", err)
	}

	promptTokens, err := meter.Int64Counter(
		"wellspring_prompt_tokens_total",
		metric.WithDescription("Estimated prompt tokens sent to the provider"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt tokens counter: %w", err)
	}

	rateLimitHits, err := meter.Int64Counter(
		"wellspring_rate_limit_exceeded_total",
		metric.WithDescription("Requests rejected by the rate limiter, by scope"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit counter: %w", err)
	}

	gateDenials, err := meter.Int64Counter(
		"wellspring_gate_denials_total",
		metric.WithDescription("Requests rejected by the feature gate, by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gate denials counter: %w", err)
	}

	fallbacks, err := meter.Int64Counter(
		"wellspring_fail_open_fallbacks_total",
		metric.WithDescription("Infrastructure lookups that fell back to a fail-open default"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback counter: %w", err)
	}

	return &PrometheusMetrics{
		generationDuration: generationDuration,
		generationsTotal:   generationsTotal,
		promptTokensTotal:  promptTokens,
		rateLimitHitsTotal: rateLimitHits,
		gateDenialsTotal:   gateDenials,
		fallbacksTotal:     fallbacks,
	}, nil
}
