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

// AuthConfig configures JWT validation for inbound requests.
type AuthConfig struct {
	// Enabled controls whether authentication is enforced.
	Enabled *bool `yaml:"enabled,omitempty"`

	// JWKSURL is the JSON Web Key Set endpoint of the identity provider.
	JWKSURL string `yaml:"jwks_url,omitempty"`

	// Issuer is the expected token issuer.
	Issuer string `yaml:"issuer,omitempty"`

	// Audience is the expected token audience.
	Audience string `yaml:"audience,omitempty"`
}

// IsEnabled returns true if authentication is enabled.
func (c *AuthConfig) IsEnabled() bool {
	return c != nil && c.Enabled != nil && *c.Enabled
}

// SetDefaults sets default values for AuthConfig.
func (c *AuthConfig) SetDefaults() {
	if c.Enabled == nil {
		c.Enabled = BoolPtr(false)
	}
}

// Validate validates the AuthConfig.
func (c *AuthConfig) Validate() error {
	if !c.IsEnabled() {
		return nil
	}
	if c.JWKSURL == "" {
		return fmt.Errorf("jwks_url is required when auth is enabled")
	}
	return nil
}
