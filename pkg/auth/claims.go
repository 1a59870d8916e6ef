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

// Package auth validates JWT tokens from external identity providers
// and carries the resulting claims through request contexts. Keys are
// fetched from the provider's JWKS endpoint and cached with periodic
// refresh to survive key rotation.
package auth

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const claimsContextKey contextKey = "wellspring_auth_claims"

// Claims are the validated claims of an authenticated caller.
type Claims struct {
	// Subject is the unique user identifier (sub claim).
	Subject string `json:"sub"`

	// TenantID is the caller's organization (tenant_id claim).
	TenantID string `json:"tenant_id,omitempty"`

	// Email is the user's email address, when the provider includes it.
	Email string `json:"email,omitempty"`

	// Roles are the caller's role assignments (roles claim). Role
	// semantics live in the feature gate, not here.
	Roles []string `json:"roles,omitempty"`

	// Custom contains any additional claims not mapped to struct fields.
	Custom map[string]any `json:"-"`
}

// ContextWithClaims returns a new context carrying the given claims.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts claims from a context, or nil when absent.
func ClaimsFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(claimsContextKey).(*Claims); ok {
		return claims
	}
	return nil
}
