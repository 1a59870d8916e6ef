// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package governance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/wellspring/pkg/config"
	"github.com/kadirpekel/wellspring/pkg/governance/featuregate"
	"github.com/kadirpekel/wellspring/pkg/governance/prompt"
	"github.com/kadirpekel/wellspring/pkg/governance/ratelimit"
	"github.com/kadirpekel/wellspring/pkg/governance/schema"
	"github.com/kadirpekel/wellspring/pkg/llms"
	"github.com/kadirpekel/wellspring/pkg/observability"
)

// Telemetry outcomes. One is recorded per pipeline run, always.
const (
	outcomeSuccess     = "success"
	outcomeRateLimited = "rate_limited"
	outcomeDenied      = "denied"
	outcomeInvalid     = "invalid"
	outcomeUnavailable = "unavailable"
)

// Orchestrator runs the full governance pipeline for each request:
// input validation, feature gate, rate limiter, prompt assembly,
// provider call, output validation. Stateless per call; all shared
// mutable state lives in the limiter's store.
type Orchestrator struct {
	config   *config.GovernanceConfig
	gate     *featuregate.Gate
	limiter  *ratelimit.Limiter
	builder  *prompt.Builder
	provider llms.Provider
	specs    map[featuregate.Feature]*FeatureSpec
	metrics  observability.Metrics

	// now is swappable for tests.
	now func() time.Time
}

// NewOrchestrator assembles the pipeline. A nil metrics recorder
// disables telemetry without disabling the pipeline.
func NewOrchestrator(
	cfg *config.GovernanceConfig,
	gate *featuregate.Gate,
	limiter *ratelimit.Limiter,
	provider llms.Provider,
	metrics observability.Metrics,
) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("feature gate is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	return &Orchestrator{
		config:   cfg,
		gate:     gate,
		limiter:  limiter,
		builder:  prompt.NewBuilder(cfg.Prompt.MaxChars),
		provider: provider,
		specs:    defaultFeatureSpecs(),
		metrics:  metrics,
		now:      time.Now,
	}, nil
}

// Generate runs one request through the pipeline. Every failure maps to
// one of the four taxonomy errors; raw store or transport errors never
// reach the caller. The request is never retried here, and a rate-limit
// increment is not rolled back when a later stage fails.
func (o *Orchestrator) Generate(ctx context.Context, req *GenerateRequest) (resp *GenerateResponse, err error) {
	requestID := uuid.NewString()
	start := o.now()
	outcome := outcomeUnavailable
	promptTokens := 0
	model := o.provider.Model()

	// Telemetry always runs, on success, on every error path, and on
	// panic. It carries identifiers and sizes, never content.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("governance pipeline panic",
				"request_id", requestID, "feature", req.Feature, "panic", fmt.Sprintf("%v", r))
			resp = nil
			err = &ServiceUnavailableError{Message: "internal pipeline failure"}
			outcome = outcomeUnavailable
		}

		duration := o.now().Sub(start)
		o.metrics.RecordGeneration(ctx, string(req.Feature), o.provider.Name(), model, duration, promptTokens, outcome)
		slog.Info("governance pipeline completed",
			"request_id", requestID,
			"feature", req.Feature,
			"outcome", outcome,
			"duration_ms", duration.Milliseconds())
	}()

	spec, ok := o.specs[req.Feature]
	if !ok {
		outcome = outcomeInvalid
		return nil, &AIResponseInvalidError{Message: fmt.Sprintf("unknown feature: %s", req.Feature)}
	}

	// Input is checked before the gate and limiter so malformed requests
	// never consume quota.
	if verr := spec.input.Validate(req.Payload); verr != nil {
		outcome = outcomeInvalid
		return nil, invalidError(verr)
	}

	auth, err := o.gate.Authorize(ctx, req.UserID, req.TenantID, req.Feature)
	if err != nil {
		var denial *featuregate.PermissionDeniedError
		if errors.As(err, &denial) {
			outcome = outcomeDenied
			o.metrics.RecordGateDenial(ctx, string(denial.Feature), string(denial.Reason))
			return nil, err
		}
		outcome = outcomeUnavailable
		slog.Error("feature gate failed", "request_id", requestID, "error", err)
		return nil, &ServiceUnavailableError{Message: "authorization check failed"}
	}
	if auth.FlagFallback {
		o.metrics.RecordFallback(ctx, "feature_flag")
	}
	if auth.RoleFallback {
		o.metrics.RecordFallback(ctx, "role")
	}

	decision, err := o.limiter.Allow(ctx, req.UserID, req.TenantID, o.now())
	if err != nil {
		var exceeded *ratelimit.ExceededError
		if errors.As(err, &exceeded) {
			outcome = outcomeRateLimited
			o.metrics.RecordRateLimitHit(ctx, string(exceeded.Scope))
			return nil, err
		}
		outcome = outcomeUnavailable
		slog.Error("rate limiter failed", "request_id", requestID, "error", err)
		return nil, &ServiceUnavailableError{Message: "rate limit check failed"}
	}

	sandboxed, filtered := prompt.SandboxDirective(req.Directive, o.config.Prompt.DirectiveMaxChars)

	built := o.builder.Build([]prompt.Layer{
		{Name: "system", Content: spec.SystemPrompt},
		{Name: "tenant_context", Content: req.TenantContext},
		{Name: "payload", Content: renderPayload(req.Payload)},
		{Name: "directive", Content: sandboxed},
	})
	if built.WasTrimmed {
		slog.Warn("prompt trimmed to budget",
			"request_id", requestID, "feature", req.Feature, "chars", built.TotalChars)
	}
	promptTokens = estimateTokens(model, built.Text)

	// The assembled text already leads with the system instructions
	// layer, so it ships as a single system message.
	providerResp, err := o.provider.Generate(ctx, &llms.Request{
		Messages: []llms.Message{
			{Role: llms.RoleSystem, Content: built.Text},
		},
		ResponseSchema: spec.OutputSchema(),
		SchemaName:     string(req.Feature),
	})
	if err != nil {
		outcome = outcomeUnavailable
		slog.Error("provider call failed", "request_id", requestID, "feature", req.Feature, "error", err)
		return nil, &ServiceUnavailableError{Message: "ai provider request failed"}
	}
	if providerResp.Model != "" {
		model = providerResp.Model
	}

	output := []byte(providerResp.Content)
	if verr := spec.output.Validate(output); verr != nil {
		outcome = outcomeInvalid
		slog.Warn("provider output failed validation",
			"request_id", requestID, "feature", req.Feature, "error", verr)
		return nil, invalidError(verr)
	}

	outcome = outcomeSuccess
	return &GenerateResponse{
		RequestID:         requestID,
		Feature:           req.Feature,
		Output:            json.RawMessage(output),
		Model:             model,
		UserRole:          auth.UserRole,
		Usage:             decision.Usages,
		PromptChars:       built.TotalChars,
		PromptTrimmed:     built.WasTrimmed,
		DirectiveFiltered: filtered,
	}, nil
}

// PurgeStaleCounters reclaims expired rate-limit counters. Intended for
// a periodic maintenance job, not the request path.
func (o *Orchestrator) PurgeStaleCounters(ctx context.Context) error {
	return o.limiter.PurgeStale(ctx, o.now())
}

// CheckUsage reports current quota consumption without spending any.
func (o *Orchestrator) CheckUsage(ctx context.Context, userID, tenantID string) ([]ratelimit.Usage, error) {
	decision, err := o.limiter.Check(ctx, userID, tenantID, o.now())
	if err != nil {
		return nil, &ServiceUnavailableError{Message: "rate limit check failed"}
	}
	return decision.Usages, nil
}

// invalidError converts a schema validation failure to the taxonomy
// error, keeping the field-level diagnostic.
func invalidError(err error) error {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return &AIResponseInvalidError{Message: verr.Error()}
	}
	return &AIResponseInvalidError{Message: err.Error()}
}

// renderPayload pretty-prints the validated payload for the prompt.
func renderPayload(payload json.RawMessage) string {
	var pretty json.RawMessage
	var buf []byte
	if err := json.Unmarshal(payload, &pretty); err == nil {
		if indented, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			buf = indented
		}
	}
	if buf == nil {
		buf = payload
	}
	return "Input data:\n" + string(buf)
}
