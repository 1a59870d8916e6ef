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
	"encoding/json"
	"fmt"

	"github.com/kadirpekel/wellspring/pkg/governance/featuregate"
	"github.com/kadirpekel/wellspring/pkg/governance/schema"
)

// FeatureSpec binds a feature key to its prompt and its input/output
// schemas. Input is validated before any quota is spent; output is
// validated before anything is returned to the caller.
type FeatureSpec struct {
	Feature      featuregate.Feature
	SystemPrompt string

	input  *schema.Validator
	output *schema.Validator

	// outputSchema is forwarded to the provider as a structured-output
	// hint. Local validation remains authoritative.
	outputSchema map[string]interface{}
}

// OutputSchema returns the provider-facing schema hint.
func (s *FeatureSpec) OutputSchema() map[string]interface{} {
	return s.outputSchema
}

func newFeatureSpec(feature featuregate.Feature, systemPrompt, inputSchema, outputSchema string) *FeatureSpec {
	subject := string(feature)

	var hint map[string]interface{}
	if err := json.Unmarshal([]byte(outputSchema), &hint); err != nil {
		panic(fmt.Sprintf("invalid output schema for %s: %v", feature, err))
	}

	return &FeatureSpec{
		Feature:      feature,
		SystemPrompt: systemPrompt,
		input:        schema.MustCompile(subject+" request payload", []byte(inputSchema)),
		output:       schema.MustCompile(subject+" model output", []byte(outputSchema)),
		outputSchema: hint,
	}
}

// defaultFeatureSpecs covers every shipped AI feature.
func defaultFeatureSpecs() map[featuregate.Feature]*FeatureSpec {
	specs := []*FeatureSpec{
		newFeatureSpec(
			featuregate.FeatureCaseSummary,
			"You summarize confidential HR support cases for the assigned case "+
				"manager. Be factual and neutral. Do not speculate about intent or "+
				"diagnose anyone. Respond with JSON only.",
			`{
				"type": "object",
				"required": ["case_title", "case_notes"],
				"additionalProperties": false,
				"properties": {
					"case_title": {"type": "string", "minLength": 1, "maxLength": 200},
					"case_notes": {"type": "string", "minLength": 1},
					"category": {"type": "string", "maxLength": 100}
				}
			}`,
			`{
				"type": "object",
				"required": ["summary", "suggested_next_steps"],
				"additionalProperties": false,
				"properties": {
					"summary": {"type": "string", "minLength": 1},
					"suggested_next_steps": {
						"type": "array",
						"items": {"type": "string"},
						"maxItems": 5
					}
				}
			}`,
		),
		newFeatureSpec(
			featuregate.FeatureCaseRegenerate,
			"You rewrite an existing HR case summary, correcting the problems "+
				"named in the revision notes while keeping all factual content. "+
				"Respond with JSON only.",
			`{
				"type": "object",
				"required": ["previous_summary", "revision_notes"],
				"additionalProperties": false,
				"properties": {
					"previous_summary": {"type": "string", "minLength": 1},
					"revision_notes": {"type": "string", "minLength": 1},
					"case_notes": {"type": "string"}
				}
			}`,
			`{
				"type": "object",
				"required": ["summary", "suggested_next_steps"],
				"additionalProperties": false,
				"properties": {
					"summary": {"type": "string", "minLength": 1},
					"suggested_next_steps": {
						"type": "array",
						"items": {"type": "string"},
						"maxItems": 5
					}
				}
			}`,
		),
		newFeatureSpec(
			featuregate.FeatureSurveyInsights,
			"You analyze anonymized employee survey responses and extract the "+
				"dominant themes. Never quote a response verbatim; paraphrase so "+
				"no individual is identifiable. Respond with JSON only.",
			`{
				"type": "object",
				"required": ["survey_title", "responses"],
				"additionalProperties": false,
				"properties": {
					"survey_title": {"type": "string", "minLength": 1, "maxLength": 200},
					"responses": {
						"type": "array",
						"items": {"type": "string"},
						"minItems": 1
					}
				}
			}`,
			`{
				"type": "object",
				"required": ["themes"],
				"additionalProperties": false,
				"properties": {
					"themes": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["theme", "sentiment"],
							"additionalProperties": false,
							"properties": {
								"theme": {"type": "string", "minLength": 1},
								"sentiment": {"type": "string", "enum": ["positive", "neutral", "negative", "mixed"]},
								"detail": {"type": "string"}
							}
						}
					}
				}
			}`,
		),
		newFeatureSpec(
			featuregate.FeaturePulseDigest,
			"You compose a short weekly wellbeing digest for a team lead from "+
				"aggregate pulse metrics. Report trends, not individuals. Respond "+
				"with JSON only.",
			`{
				"type": "object",
				"required": ["team_name", "metrics"],
				"additionalProperties": false,
				"properties": {
					"team_name": {"type": "string", "minLength": 1, "maxLength": 200},
					"metrics": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["name", "current", "previous"],
							"additionalProperties": false,
							"properties": {
								"name": {"type": "string", "minLength": 1},
								"current": {"type": "number"},
								"previous": {"type": "number"}
							}
						}
					}
				}
			}`,
			`{
				"type": "object",
				"required": ["digest"],
				"additionalProperties": false,
				"properties": {
					"digest": {"type": "string", "minLength": 1},
					"highlights": {
						"type": "array",
						"items": {"type": "string"},
						"maxItems": 5
					}
				}
			}`,
		),
		newFeatureSpec(
			featuregate.FeatureRecognitionBlurb,
			"You write a short, warm recognition message celebrating a "+
				"colleague's contribution. Keep it under three sentences and "+
				"grounded in the stated achievement. Respond with JSON only.",
			`{
				"type": "object",
				"required": ["recipient_name", "achievement"],
				"additionalProperties": false,
				"properties": {
					"recipient_name": {"type": "string", "minLength": 1, "maxLength": 100},
					"achievement": {"type": "string", "minLength": 1},
					"tone": {"type": "string", "enum": ["warm", "playful", "formal"]}
				}
			}`,
			`{
				"type": "object",
				"required": ["message"],
				"additionalProperties": false,
				"properties": {
					"message": {"type": "string", "minLength": 1, "maxLength": 600}
				}
			}`,
		),
		newFeatureSpec(
			featuregate.FeatureOrgReport,
			"You draft an organization-level wellbeing report for HR leadership "+
				"from aggregate statistics. Strictly aggregate: no names, no "+
				"individual-level statements. Respond with JSON only.",
			`{
				"type": "object",
				"required": ["period", "sections"],
				"additionalProperties": false,
				"properties": {
					"period": {"type": "string", "minLength": 1, "maxLength": 100},
					"sections": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["title", "data"],
							"additionalProperties": false,
							"properties": {
								"title": {"type": "string", "minLength": 1},
								"data": {"type": "string", "minLength": 1}
							}
						}
					}
				}
			}`,
			`{
				"type": "object",
				"required": ["report"],
				"additionalProperties": false,
				"properties": {
					"report": {"type": "string", "minLength": 1},
					"risks": {
						"type": "array",
						"items": {"type": "string"},
						"maxItems": 10
					}
				}
			}`,
		),
	}

	registry := make(map[featuregate.Feature]*FeatureSpec, len(specs))
	for _, spec := range specs {
		registry[spec.Feature] = spec
	}
	return registry
}
