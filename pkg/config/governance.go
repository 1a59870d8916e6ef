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

package config

import "fmt"

// GovernanceConfig configures the AI request governance pipeline.
type GovernanceConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit,omitempty"`
	Prompt    PromptConfig    `yaml:"prompt,omitempty"`
}

// RateLimitConfig defines per-window request quotas.
//
// Counters are bucketed into fixed 10-minute windows; a request is
// rejected once the post-increment count is strictly greater than the
// limit for its scope.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Backend is the counter storage backend ("memory" or "sql").
	Backend string `yaml:"backend,omitempty"`

	// UserLimit is the maximum requests per user per window.
	UserLimit int64 `yaml:"user_limit,omitempty"`

	// TenantLimit is the maximum requests per tenant per window.
	TenantLimit int64 `yaml:"tenant_limit,omitempty"`
}

// PromptConfig defines character budgets for prompt assembly.
type PromptConfig struct {
	// MaxChars is the global character budget for the assembled prompt.
	MaxChars int `yaml:"max_chars,omitempty"`

	// DirectiveMaxChars is the hard cap applied to the untrusted
	// user-directive layer before sandboxing.
	DirectiveMaxChars int `yaml:"directive_max_chars,omitempty"`
}

// IsEnabled returns true if rate limiting is enabled.
func (c *RateLimitConfig) IsEnabled() bool {
	return c != nil && (c.Enabled == nil || *c.Enabled)
}

// SetDefaults sets default values for GovernanceConfig.
func (c *GovernanceConfig) SetDefaults() {
	if c.RateLimit.Enabled == nil {
		c.RateLimit.Enabled = BoolPtr(true)
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = "memory"
	}
	if c.RateLimit.UserLimit == 0 {
		c.RateLimit.UserLimit = 30
	}
	if c.RateLimit.TenantLimit == 0 {
		c.RateLimit.TenantLimit = 200
	}
	if c.Prompt.MaxChars == 0 {
		c.Prompt.MaxChars = 12000
	}
	if c.Prompt.DirectiveMaxChars == 0 {
		c.Prompt.DirectiveMaxChars = 1500
	}
}

// Validate validates the GovernanceConfig.
func (c *GovernanceConfig) Validate() error {
	if c.RateLimit.Backend != "memory" && c.RateLimit.Backend != "sql" {
		return fmt.Errorf("invalid rate_limit.backend '%s', must be 'memory' or 'sql'", c.RateLimit.Backend)
	}
	if c.RateLimit.UserLimit < 0 || c.RateLimit.TenantLimit < 0 {
		return fmt.Errorf("rate_limit limits must be positive")
	}
	if c.RateLimit.UserLimit > c.RateLimit.TenantLimit {
		return fmt.Errorf("rate_limit.user_limit (%d) cannot exceed rate_limit.tenant_limit (%d)",
			c.RateLimit.UserLimit, c.RateLimit.TenantLimit)
	}
	if c.Prompt.MaxChars < 0 || c.Prompt.DirectiveMaxChars < 0 {
		return fmt.Errorf("prompt budgets must be positive")
	}
	if c.Prompt.DirectiveMaxChars > c.Prompt.MaxChars {
		return fmt.Errorf("prompt.directive_max_chars (%d) cannot exceed prompt.max_chars (%d)",
			c.Prompt.DirectiveMaxChars, c.Prompt.MaxChars)
	}
	return nil
}
