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

// LLMProviderConfig configures the external language-model provider.
type LLMProviderConfig struct {
	// Type is the provider type ("openai" or any OpenAI-compatible API).
	Type string `yaml:"type,omitempty"`

	// Model is the model name sent to the provider.
	Model string `yaml:"model,omitempty"`

	// APIKey authenticates against the provider. Supports ${VAR} expansion.
	APIKey string `yaml:"api_key,omitempty"`

	// Host is the provider base URL.
	Host string `yaml:"host,omitempty"`

	// MaxTokens caps the provider completion length.
	MaxTokens int `yaml:"max_tokens,omitempty"`

	// Temperature for generation.
	Temperature float64 `yaml:"temperature,omitempty"`

	// Timeout is the request timeout in seconds.
	Timeout int `yaml:"timeout,omitempty"`

	// MaxRetries is the transport-level retry count. The governance
	// pipeline itself never retries; this knob belongs to the HTTP edge
	// and defaults to 0.
	MaxRetries int `yaml:"max_retries,omitempty"`

	// RetryDelay is the base retry delay in seconds.
	RetryDelay int `yaml:"retry_delay,omitempty"`
}

// SetDefaults sets default values for LLMProviderConfig.
func (c *LLMProviderConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "openai"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Host == "" {
		c.Host = "https://api.openai.com"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2048
	}
	if c.Timeout == 0 {
		c.Timeout = 60
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 2
	}
}

// Validate validates the LLMProviderConfig.
func (c *LLMProviderConfig) Validate() error {
	if c.Type != "openai" {
		return fmt.Errorf("invalid llm.type '%s', must be 'openai'", c.Type)
	}
	if c.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.Host == "" {
		return fmt.Errorf("llm.host is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries cannot be negative")
	}
	return nil
}
