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

// Package config defines the configuration surface for the wellspring
// AI governance service. Configuration is loaded from a single YAML file
// with ${VAR} environment expansion; every section carries its own
// SetDefaults and Validate.
package config

import "fmt"

// Config is the root configuration.
type Config struct {
	Logger     LoggerConfig      `yaml:"logger,omitempty"`
	Server     ServerConfig      `yaml:"server,omitempty"`
	Auth       AuthConfig        `yaml:"auth,omitempty"`
	Governance GovernanceConfig  `yaml:"governance,omitempty"`
	LLM        LLMProviderConfig `yaml:"llm,omitempty"`
	Database   DatabaseConfig    `yaml:"database,omitempty"`
}

// SetDefaults applies defaults to all sections.
func (c *Config) SetDefaults() {
	c.Logger.SetDefaults()
	c.Server.SetDefaults()
	c.Auth.SetDefaults()
	c.Governance.SetDefaults()
	c.LLM.SetDefaults()
	c.Database.SetDefaults()
}

// Validate validates all sections.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Governance.Validate(); err != nil {
		return fmt.Errorf("governance: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

// BoolPtr returns a pointer to the given bool.
func BoolPtr(b bool) *bool {
	return &b
}
