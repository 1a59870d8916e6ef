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

package featuregate

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const createGateTablesSQL = `
CREATE TABLE IF NOT EXISTS feature_flags (
    tenant_id VARCHAR(255) NOT NULL,
    feature_key VARCHAR(64) NOT NULL,
    enabled BOOLEAN NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (tenant_id, feature_key)
);

CREATE TABLE IF NOT EXISTS role_assignments (
    user_id VARCHAR(255) NOT NULL,
    role VARCHAR(64) NOT NULL,
    assigned_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, role)
);
`

// SQLStore is a SQL-backed implementation of FlagStore and RoleStore.
// It supports Postgres, MySQL, and SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewSQLStore creates a new SQL-backed flag and role store.
// Supported dialects: "postgres", "mysql", "sqlite".
func NewSQLStore(db *sql.DB, dialect string) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	switch dialect {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported dialect: %s (supported: postgres, mysql, sqlite)", dialect)
	}

	s := &SQLStore{
		db:      db,
		dialect: dialect,
	}

	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLStore) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, createGateTablesSQL); err != nil {
		return fmt.Errorf("failed to create feature gate tables: %w", err)
	}

	return nil
}

// IsEnabled reports the flag state; absent rows read as enabled.
func (s *SQLStore) IsEnabled(ctx context.Context, tenantID string, feature Feature) (bool, error) {
	query := `SELECT enabled FROM feature_flags WHERE tenant_id = ? AND feature_key = ?`
	if s.dialect == "postgres" {
		query = `SELECT enabled FROM feature_flags WHERE tenant_id = $1 AND feature_key = $2`
	}

	var enabled bool
	err := s.db.QueryRowContext(ctx, query, tenantID, string(feature)).Scan(&enabled)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query feature flag: %w", err)
	}
	return enabled, nil
}

// RolesFor returns the roles assigned to a user.
func (s *SQLStore) RolesFor(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT role FROM role_assignments WHERE user_id = ?`
	if s.dialect == "postgres" {
		query = `SELECT role FROM role_assignments WHERE user_id = $1`
	}

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role assignments: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read role assignments: %w", err)
	}
	return roles, nil
}

// SetFlag upserts a feature flag for a tenant.
func (s *SQLStore) SetFlag(ctx context.Context, tenantID string, feature Feature, enabled bool) error {
	now := time.Now().UTC()

	var query string
	switch s.dialect {
	case "postgres":
		query = `
			INSERT INTO feature_flags (tenant_id, feature_key, enabled, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (tenant_id, feature_key)
			DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at
		`
	case "mysql":
		query = `
			INSERT INTO feature_flags (tenant_id, feature_key, enabled, updated_at)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE enabled = VALUES(enabled), updated_at = VALUES(updated_at)
		`
	default:
		query = `
			INSERT OR REPLACE INTO feature_flags (tenant_id, feature_key, enabled, updated_at)
			VALUES (?, ?, ?, ?)
		`
	}

	if _, err := s.db.ExecContext(ctx, query, tenantID, string(feature), enabled, now); err != nil {
		return fmt.Errorf("failed to set feature flag: %w", err)
	}
	return nil
}

// AssignRole records a role assignment for a user.
func (s *SQLStore) AssignRole(ctx context.Context, userID, role string) error {
	now := time.Now().UTC()

	var query string
	switch s.dialect {
	case "postgres":
		query = `
			INSERT INTO role_assignments (user_id, role, assigned_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, role) DO NOTHING
		`
	case "mysql":
		query = `INSERT IGNORE INTO role_assignments (user_id, role, assigned_at) VALUES (?, ?, ?)`
	default:
		query = `INSERT OR IGNORE INTO role_assignments (user_id, role, assigned_at) VALUES (?, ?, ?)`
	}

	if _, err := s.db.ExecContext(ctx, query, userID, role, now); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}
