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

package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const createCountersTableSQL = `
CREATE TABLE IF NOT EXISTS rate_limit_counters (
    scope VARCHAR(16) NOT NULL,
    identifier VARCHAR(255) NOT NULL,
    window_key VARCHAR(16) NOT NULL,
    amount BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (scope, identifier, window_key)
);

CREATE INDEX IF NOT EXISTS idx_rate_limit_counters_window_key ON rate_limit_counters(window_key);
`

// SQLStore is a SQL-backed implementation of Store. The increment is a
// single atomic upsert so concurrent requests against the same counter
// serialize in the database, not in this process.
// It supports Postgres, MySQL, and SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewSQLStore creates a new SQL-backed store.
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

// initSchema creates the counters table.
func (s *SQLStore) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, createCountersTableSQL); err != nil {
		return fmt.Errorf("failed to create rate_limit_counters table: %w", err)
	}

	return nil
}

// Increment atomically increments a counter and returns the new count.
func (s *SQLStore) Increment(ctx context.Context, scope Scope, identifier, windowKey string) (int64, error) {
	now := time.Now().UTC()

	switch s.dialect {
	case "postgres":
		query := `
			INSERT INTO rate_limit_counters (scope, identifier, window_key, amount, updated_at)
			VALUES ($1, $2, $3, 1, $4)
			ON CONFLICT (scope, identifier, window_key)
			DO UPDATE SET amount = rate_limit_counters.amount + 1, updated_at = EXCLUDED.updated_at
			RETURNING amount
		`
		var amount int64
		if err := s.db.QueryRowContext(ctx, query, string(scope), identifier, windowKey, now).Scan(&amount); err != nil {
			return 0, fmt.Errorf("failed to increment counter: %w", err)
		}
		return amount, nil

	case "sqlite":
		query := `
			INSERT INTO rate_limit_counters (scope, identifier, window_key, amount, updated_at)
			VALUES (?, ?, ?, 1, ?)
			ON CONFLICT (scope, identifier, window_key)
			DO UPDATE SET amount = amount + 1, updated_at = excluded.updated_at
			RETURNING amount
		`
		var amount int64
		if err := s.db.QueryRowContext(ctx, query, string(scope), identifier, windowKey, now).Scan(&amount); err != nil {
			return 0, fmt.Errorf("failed to increment counter: %w", err)
		}
		return amount, nil

	default: // mysql
		// MySQL has no RETURNING; LAST_INSERT_ID carries the new amount
		// through the upsert.
		query := `
			INSERT INTO rate_limit_counters (scope, identifier, window_key, amount, updated_at)
			VALUES (?, ?, ?, LAST_INSERT_ID(1), ?)
			ON DUPLICATE KEY UPDATE amount = LAST_INSERT_ID(amount + 1), updated_at = VALUES(updated_at)
		`
		result, err := s.db.ExecContext(ctx, query, string(scope), identifier, windowKey, now)
		if err != nil {
			return 0, fmt.Errorf("failed to increment counter: %w", err)
		}
		amount, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read incremented counter: %w", err)
		}
		return amount, nil
	}
}

// Get returns the current count without modifying it.
func (s *SQLStore) Get(ctx context.Context, scope Scope, identifier, windowKey string) (int64, error) {
	query := `SELECT amount FROM rate_limit_counters WHERE scope = ? AND identifier = ? AND window_key = ?`
	if s.dialect == "postgres" {
		query = `SELECT amount FROM rate_limit_counters WHERE scope = $1 AND identifier = $2 AND window_key = $3`
	}

	var amount int64
	err := s.db.QueryRowContext(ctx, query, string(scope), identifier, windowKey).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query counter: %w", err)
	}
	return amount, nil
}

// PurgeBefore deletes counters from windows older than the given key.
// Intended for a periodic cleanup job; never called on the request path.
func (s *SQLStore) PurgeBefore(ctx context.Context, windowKey string) error {
	query := `DELETE FROM rate_limit_counters WHERE window_key < ?`
	if s.dialect == "postgres" {
		query = `DELETE FROM rate_limit_counters WHERE window_key < $1`
	}

	if _, err := s.db.ExecContext(ctx, query, windowKey); err != nil {
		return fmt.Errorf("failed to purge counters: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *SQLStore) Close() error {
	return nil
}
