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

import (
	"database/sql"
	"fmt"

	// SQL drivers registered for the supported dialects.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DatabaseConfig configures the SQL database used by the "sql" counter
// and store backends.
type DatabaseConfig struct {
	// Driver is one of "sqlite", "postgres", "mysql".
	Driver string `yaml:"driver,omitempty"`

	// DSN is the driver-specific connection string. Supports ${VAR}
	// expansion.
	DSN string `yaml:"dsn,omitempty"`

	// MaxOpenConns caps the connection pool.
	MaxOpenConns int `yaml:"max_open_conns,omitempty"`
}

// SetDefaults sets default values for DatabaseConfig.
func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.DSN == "" && c.Driver == "sqlite" {
		c.DSN = ".wellspring/wellspring.db"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}
}

// Validate validates the DatabaseConfig.
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("invalid driver '%s', must be 'sqlite', 'postgres', or 'mysql'", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	return nil
}

// driverName maps the configured dialect to the registered driver name.
func (c *DatabaseConfig) driverName() string {
	if c.Driver == "sqlite" {
		return "sqlite3"
	}
	return c.Driver
}

// Open opens a connection pool for the configured database.
func (c *DatabaseConfig) Open() (*sql.DB, error) {
	db, err := sql.Open(c.driverName(), c.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", c.Driver, err)
	}
	db.SetMaxOpenConns(c.MaxOpenConns)
	return db, nil
}
