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

// Role is a caller role. Roles form a total order; a caller's effective
// role is the maximum rank across all of their assignments.
type Role string

const (
	RoleUser        Role = "user"
	RoleManager     Role = "manager"
	RoleTenantAdmin Role = "tenant_admin"
	RoleSuperAdmin  Role = "super_admin"
)

// roleRanks orders the hierarchy. Unknown role strings rank 0, the same
// as the lowest role, so a malformed assignment never grants elevated
// access and never locks a caller out of baseline features.
var roleRanks = map[Role]int{
	RoleUser:        0,
	RoleManager:     1,
	RoleTenantAdmin: 2,
	RoleSuperAdmin:  3,
}

// Rank returns the role's position in the hierarchy; unknown roles rank 0.
func (r Role) Rank() int {
	return roleRanks[r]
}

// EffectiveRole reduces a set of role assignments to the highest-ranked
// role. An empty set defaults to RoleUser.
func EffectiveRole(roles []string) Role {
	effective := RoleUser
	for _, raw := range roles {
		role := Role(raw)
		if role.Rank() > effective.Rank() {
			effective = role
		}
	}
	// Normalize unknown strings to the lowest role.
	if _, ok := roleRanks[effective]; !ok {
		return RoleUser
	}
	return effective
}

// Feature is a governed AI capability.
type Feature string

const (
	// Generation-class features, available to every authenticated user.
	FeatureCaseSummary      Feature = "case_summary"
	FeatureSurveyInsights   Feature = "survey_insights"
	FeaturePulseDigest      Feature = "pulse_digest"
	FeatureRecognitionBlurb Feature = "recognition_blurb"

	// Administrative features: destructive regeneration and org-wide
	// reporting require tenant administration.
	FeatureCaseRegenerate Feature = "case_regenerate"
	FeatureOrgReport      Feature = "org_report"
)

// minimumRoles maps each feature to the lowest role allowed to use it.
var minimumRoles = map[Feature]Role{
	FeatureCaseSummary:      RoleUser,
	FeatureSurveyInsights:   RoleUser,
	FeaturePulseDigest:      RoleUser,
	FeatureRecognitionBlurb: RoleUser,
	FeatureCaseRegenerate:   RoleTenantAdmin,
	FeatureOrgReport:        RoleTenantAdmin,
}

// MinimumRole returns the lowest role allowed to use a feature.
// Unknown features require tenant administration.
func MinimumRole(f Feature) Role {
	if role, ok := minimumRoles[f]; ok {
		return role
	}
	return RoleTenantAdmin
}

// IsKnown reports whether the feature is a governed capability.
func IsKnown(f Feature) bool {
	_, ok := minimumRoles[f]
	return ok
}
