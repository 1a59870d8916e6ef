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
	"sync"
)

type flagKey struct {
	TenantID string
	Feature  Feature
}

// MemoryFlagStore is an in-memory implementation of FlagStore.
// It is thread-safe and suitable for development, testing, and
// single-instance deployments.
type MemoryFlagStore struct {
	flags map[flagKey]bool
	mu    sync.RWMutex
}

// NewMemoryFlagStore creates a new in-memory flag store.
func NewMemoryFlagStore() *MemoryFlagStore {
	return &MemoryFlagStore{
		flags: make(map[flagKey]bool),
	}
}

// IsEnabled reports the flag state; absent rows read as enabled.
func (s *MemoryFlagStore) IsEnabled(ctx context.Context, tenantID string, feature Feature) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enabled, configured := s.flags[flagKey{TenantID: tenantID, Feature: feature}]
	if !configured {
		return true, nil
	}
	return enabled, nil
}

// Set configures a flag for a tenant.
func (s *MemoryFlagStore) Set(tenantID string, feature Feature, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flags[flagKey{TenantID: tenantID, Feature: feature}] = enabled
}

// MemoryRoleStore is an in-memory implementation of RoleStore.
type MemoryRoleStore struct {
	roles map[string][]string
	mu    sync.RWMutex
}

// NewMemoryRoleStore creates a new in-memory role store.
func NewMemoryRoleStore() *MemoryRoleStore {
	return &MemoryRoleStore{
		roles: make(map[string][]string),
	}
}

// RolesFor returns the roles assigned to a user.
func (s *MemoryRoleStore) RolesFor(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := s.roles[userID]
	out := make([]string, len(roles))
	copy(out, roles)
	return out, nil
}

// Assign adds a role assignment for a user.
func (s *MemoryRoleStore) Assign(userID string, roles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roles[userID] = append(s.roles[userID], roles...)
}
