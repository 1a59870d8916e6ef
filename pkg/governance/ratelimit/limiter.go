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
	"fmt"
	"time"

	"github.com/kadirpekel/wellspring/pkg/config"
)

// Limiter enforces per-user and per-tenant quotas against a Store.
type Limiter struct {
	config *config.RateLimitConfig
	store  Store
}

// NewLimiter creates a new rate limiter.
func NewLimiter(cfg *config.RateLimitConfig, store Store) (*Limiter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	return &Limiter{
		config: cfg,
		store:  store,
	}, nil
}

// Allow atomically increments the counters for the request and rejects it
// once a post-increment count is strictly greater than its limit. The
// user counter is incremented and tested first; the tenant counter is
// only consulted when the user passes, so a request over both limits is
// reported as a user violation. Increments are never rolled back.
func (l *Limiter) Allow(ctx context.Context, userID, tenantID string, now time.Time) (*Decision, error) {
	if !l.config.IsEnabled() {
		return &Decision{Allowed: true}, nil
	}
	if userID == "" || tenantID == "" {
		return nil, fmt.Errorf("user and tenant identifiers are required")
	}

	windowKey := WindowKey(now)

	userCount, err := l.store.Increment(ctx, ScopeUser, userID, windowKey)
	if err != nil {
		return nil, fmt.Errorf("failed to increment user counter: %w", err)
	}
	if userCount > l.config.UserLimit {
		return nil, &ExceededError{Scope: ScopeUser, WindowKey: windowKey}
	}

	tenantCount, err := l.store.Increment(ctx, ScopeTenant, tenantID, windowKey)
	if err != nil {
		return nil, fmt.Errorf("failed to increment tenant counter: %w", err)
	}
	if tenantCount > l.config.TenantLimit {
		return nil, &ExceededError{Scope: ScopeTenant, WindowKey: windowKey}
	}

	return &Decision{
		Allowed: true,
		Usages: []Usage{
			l.usage(ScopeUser, userCount, l.config.UserLimit, windowKey),
			l.usage(ScopeTenant, tenantCount, l.config.TenantLimit, windowKey),
		},
	}, nil
}

// Check reports the quota state without recording usage.
func (l *Limiter) Check(ctx context.Context, userID, tenantID string, now time.Time) (*Decision, error) {
	if !l.config.IsEnabled() {
		return &Decision{Allowed: true}, nil
	}
	if userID == "" || tenantID == "" {
		return nil, fmt.Errorf("user and tenant identifiers are required")
	}

	windowKey := WindowKey(now)

	userCount, err := l.store.Get(ctx, ScopeUser, userID, windowKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read user counter: %w", err)
	}
	tenantCount, err := l.store.Get(ctx, ScopeTenant, tenantID, windowKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read tenant counter: %w", err)
	}

	decision := &Decision{
		Allowed: true,
		Usages: []Usage{
			l.usage(ScopeUser, userCount, l.config.UserLimit, windowKey),
			l.usage(ScopeTenant, tenantCount, l.config.TenantLimit, windowKey),
		},
	}
	// User scope wins when both are over.
	if userCount > l.config.UserLimit {
		decision.Allowed = false
	} else if tenantCount > l.config.TenantLimit {
		decision.Allowed = false
	}
	return decision, nil
}

// Increment bumps a single counter and returns the new count. Exposed for
// callers that manage scopes individually; Allow is the usual entry point.
func (l *Limiter) Increment(ctx context.Context, scope Scope, identifier string, now time.Time) (int64, error) {
	if identifier == "" {
		return 0, fmt.Errorf("identifier cannot be empty")
	}
	return l.store.Increment(ctx, scope, identifier, WindowKey(now))
}

// PurgeStale drops counters older than the previous window. Counters are
// logically inert once their window rolls over; this just reclaims space.
func (l *Limiter) PurgeStale(ctx context.Context, now time.Time) error {
	return l.store.PurgeBefore(ctx, WindowKey(now.Add(-WindowDuration)))
}

func (l *Limiter) usage(scope Scope, current, limit int64, windowKey string) Usage {
	remaining := limit - current
	if remaining < 0 {
		remaining = 0
	}
	return Usage{
		Scope:     scope,
		Current:   current,
		Limit:     limit,
		Remaining: remaining,
		WindowKey: windowKey,
	}
}
