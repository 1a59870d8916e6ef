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

// Package featuregate authorizes AI features through two layers: a
// per-tenant feature flag and a role-based minimum per feature.
//
// The flag is resolved first because the flag store is the cheaper, more
// available lookup; a disabled feature short-circuits before any role
// resolution. Both lookups fail open on infrastructure errors: the flag
// is treated as enabled, and the role falls back to the lowest privilege.
// A warning is logged either way so the fallback is auditable.
package featuregate

import (
	"context"
	"fmt"
	"log/slog"
)

// Authorization is the successful result of a gate check, returned for
// telemetry use by the caller.
type Authorization struct {
	// UserRole is the caller's resolved effective role.
	UserRole Role

	// FeatureEnabled is the resolved flag state (true when the flag was
	// unconfigured or the lookup fell back).
	FeatureEnabled bool

	// FlagFallback and RoleFallback report that the corresponding lookup
	// failed and a fail-open default was used.
	FlagFallback bool
	RoleFallback bool
}

// Gate authorizes features against a FlagStore and a RoleStore.
type Gate struct {
	flags FlagStore
	roles RoleStore
}

// NewGate creates a feature gate.
func NewGate(flags FlagStore, roles RoleStore) (*Gate, error) {
	if flags == nil {
		return nil, fmt.Errorf("flag store is required")
	}
	if roles == nil {
		return nil, fmt.Errorf("role store is required")
	}
	return &Gate{
		flags: flags,
		roles: roles,
	}, nil
}

// Authorize checks the tenant's feature flag, then the caller's effective
// role against the feature's minimum. A disabled flag denies everyone,
// including super admins, with reason feature_disabled before any role
// lookup happens.
func (g *Gate) Authorize(ctx context.Context, userID, tenantID string, feature Feature) (*Authorization, error) {
	auth := &Authorization{}

	enabled, err := g.flags.IsEnabled(ctx, tenantID, feature)
	if err != nil {
		// Availability over enforcement when the flag store itself is
		// unreachable.
		slog.Warn("feature flag lookup failed, treating as enabled",
			"feature", feature, "error", err)
		enabled = true
		auth.FlagFallback = true
	}

	if !enabled {
		return nil, &PermissionDeniedError{Reason: ReasonFeatureDisabled, Feature: feature}
	}

	roles, err := g.roles.RolesFor(ctx, userID)
	if err != nil {
		// Fail open to the lowest privilege, never the highest.
		slog.Warn("role lookup failed, defaulting to lowest role",
			"feature", feature, "error", err)
		roles = nil
		auth.RoleFallback = true
	}

	role := EffectiveRole(roles)
	if role.Rank() < MinimumRole(feature).Rank() {
		return nil, &PermissionDeniedError{Reason: ReasonRBAC, Feature: feature}
	}

	auth.UserRole = role
	auth.FeatureEnabled = enabled
	return auth, nil
}
