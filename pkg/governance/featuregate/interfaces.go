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

import "context"

// FlagStore resolves per-tenant feature flags.
//
// Implementations must be safe for concurrent use.
type FlagStore interface {
	// IsEnabled reports whether a feature is enabled for a tenant.
	// An unconfigured (absent) flag reads as enabled.
	IsEnabled(ctx context.Context, tenantID string, feature Feature) (bool, error)
}

// RoleStore resolves a caller's role assignments.
//
// Implementations must be safe for concurrent use.
type RoleStore interface {
	// RolesFor returns the role strings assigned to a user. A user with
	// no assignments returns an empty slice, not an error.
	RolesFor(ctx context.Context, userID string) ([]string, error)
}

// Ensure interface compliance at compile time.
var (
	_ FlagStore = (*MemoryFlagStore)(nil)
	_ FlagStore = (*SQLStore)(nil)
	_ RoleStore = (*MemoryRoleStore)(nil)
	_ RoleStore = (*SQLStore)(nil)
)
