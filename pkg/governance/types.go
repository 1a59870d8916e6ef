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

// Package governance runs every AI request through the full admission
// pipeline: payload validation, feature gating, rate limiting, budgeted
// prompt assembly with injection defense, the provider call, and output
// validation. Callers see only the four-error taxonomy defined in this
// package.
package governance

import (
	"encoding/json"

	"github.com/kadirpekel/wellspring/pkg/governance/featuregate"
	"github.com/kadirpekel/wellspring/pkg/governance/ratelimit"
)

// GenerateRequest is one AI generation request entering the pipeline.
type GenerateRequest struct {
	// UserID and TenantID identify the caller for gating and limiting.
	UserID   string
	TenantID string

	// Feature selects the governed capability and its schemas.
	Feature featuregate.Feature

	// Payload is the feature-specific structured input, validated
	// against the feature's input schema before any quota is spent.
	Payload json.RawMessage

	// Directive is optional free-form guidance from the end user. It is
	// sanitized, clamped, and sandboxed before it reaches the prompt.
	Directive string

	// TenantContext is optional tenant-level tone and policy text,
	// sourced from tenant configuration rather than the end user.
	TenantContext string
}

// GenerateResponse is the validated result of a pipeline run.
type GenerateResponse struct {
	// RequestID correlates logs and telemetry for this run.
	RequestID string

	Feature featuregate.Feature

	// Output is the provider's JSON output, already validated against
	// the feature's output schema.
	Output json.RawMessage

	// Model is the provider model that produced the output.
	Model string

	// UserRole is the caller's effective role as resolved by the gate.
	UserRole featuregate.Role

	// Usage reports the caller's remaining quota after this request.
	Usage []ratelimit.Usage

	// PromptChars and PromptTrimmed describe the assembled prompt.
	PromptChars   int
	PromptTrimmed bool

	// DirectiveFiltered reports that injection phrases were removed from
	// the user directive. The directive content itself is never echoed.
	DirectiveFiltered bool
}
