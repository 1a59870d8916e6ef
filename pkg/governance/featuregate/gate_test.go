package featuregate

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type erroringFlagStore struct{}

func (erroringFlagStore) IsEnabled(context.Context, string, Feature) (bool, error) {
	return false, fmt.Errorf("flag store unreachable")
}

type erroringRoleStore struct{}

func (erroringRoleStore) RolesFor(context.Context, string) ([]string, error) {
	return nil, fmt.Errorf("role store unreachable")
}

func newTestGate(t *testing.T) (*Gate, *MemoryFlagStore, *MemoryRoleStore) {
	t.Helper()

	flags := NewMemoryFlagStore()
	roles := NewMemoryRoleStore()
	gate, err := NewGate(flags, roles)
	require.NoError(t, err)
	return gate, flags, roles
}

func TestAuthorize_UserRoleFeature(t *testing.T) {
	gate, _, roles := newTestGate(t)
	roles.Assign("user-1", "user")

	auth, err := gate.Authorize(context.Background(), "user-1", "tenant-1", FeatureCaseSummary)
	require.NoError(t, err)

	assert.Equal(t, RoleUser, auth.UserRole)
	assert.True(t, auth.FeatureEnabled)
}

func TestAuthorize_UserDeniedAdminFeature(t *testing.T) {
	gate, _, roles := newTestGate(t)
	roles.Assign("user-1", "user")

	_, err := gate.Authorize(context.Background(), "user-1", "tenant-1", FeatureOrgReport)
	require.Error(t, err)

	denial := GetDenial(err)
	require.NotNil(t, denial)
	assert.Equal(t, ReasonRBAC, denial.Reason)
	assert.Equal(t, FeatureOrgReport, denial.Feature)
	assert.True(t, IsPermissionDenied(err))
}

func TestAuthorize_TenantAdminAllowedAdminFeature(t *testing.T) {
	gate, _, roles := newTestGate(t)
	roles.Assign("user-1", "tenant_admin")

	auth, err := gate.Authorize(context.Background(), "user-1", "tenant-1", FeatureCaseRegenerate)
	require.NoError(t, err)
	assert.Equal(t, RoleTenantAdmin, auth.UserRole)
}

func TestAuthorize_DisabledFeatureDeniesSuperAdmin(t *testing.T) {
	gate, flags, roles := newTestGate(t)
	roles.Assign("user-1", "super_admin")
	flags.Set("tenant-1", FeatureOrgReport, false)

	_, err := gate.Authorize(context.Background(), "user-1", "tenant-1", FeatureOrgReport)
	require.Error(t, err)

	denial := GetDenial(err)
	require.NotNil(t, denial)
	assert.Equal(t, ReasonFeatureDisabled, denial.Reason)
}

func TestAuthorize_UnconfiguredFlagIsEnabled(t *testing.T) {
	gate, _, _ := newTestGate(t)

	auth, err := gate.Authorize(context.Background(), "user-1", "tenant-1", FeatureCaseSummary)
	require.NoError(t, err)
	assert.True(t, auth.FeatureEnabled)
}

func TestAuthorize_FlagIsolatedPerTenant(t *testing.T) {
	gate, flags, _ := newTestGate(t)
	flags.Set("tenant-1", FeatureCaseSummary, false)

	_, err := gate.Authorize(context.Background(), "user-1", "tenant-1", FeatureCaseSummary)
	assert.True(t, IsPermissionDenied(err))

	_, err = gate.Authorize(context.Background(), "user-1", "tenant-2", FeatureCaseSummary)
	assert.NoError(t, err)
}

func TestAuthorize_NoRolesDefaultsToUser(t *testing.T) {
	gate, _, _ := newTestGate(t)

	auth, err := gate.Authorize(context.Background(), "unknown-user", "tenant-1", FeatureCaseSummary)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, auth.UserRole)

	_, err = gate.Authorize(context.Background(), "unknown-user", "tenant-1", FeatureOrgReport)
	assert.True(t, IsPermissionDenied(err))
}

func TestAuthorize_FlagLookupFailureFailsOpen(t *testing.T) {
	gate, err := NewGate(erroringFlagStore{}, NewMemoryRoleStore())
	require.NoError(t, err)

	auth, err := gate.Authorize(context.Background(), "user-1", "tenant-1", FeatureCaseSummary)
	require.NoError(t, err)
	assert.True(t, auth.FeatureEnabled)
	assert.True(t, auth.FlagFallback)
}

func TestAuthorize_RoleLookupFailureFailsOpenToLowest(t *testing.T) {
	gate, err := NewGate(NewMemoryFlagStore(), erroringRoleStore{})
	require.NoError(t, err)

	// Baseline features stay available.
	auth, err := gate.Authorize(context.Background(), "user-1", "tenant-1", FeatureCaseSummary)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, auth.UserRole)
	assert.True(t, auth.RoleFallback)

	// Elevated features are denied, never granted, on fallback.
	_, err = gate.Authorize(context.Background(), "user-1", "tenant-1", FeatureOrgReport)
	assert.True(t, IsPermissionDenied(err))
}

func TestSQLStore_FlagsAndRoles(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	store, err := NewSQLStore(db, "sqlite")
	require.NoError(t, err)

	ctx := context.Background()

	// Absent flag reads enabled.
	enabled, err := store.IsEnabled(ctx, "tenant-1", FeatureCaseSummary)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, store.SetFlag(ctx, "tenant-1", FeatureCaseSummary, false))
	enabled, err = store.IsEnabled(ctx, "tenant-1", FeatureCaseSummary)
	require.NoError(t, err)
	assert.False(t, enabled)

	// Upsert flips it back.
	require.NoError(t, store.SetFlag(ctx, "tenant-1", FeatureCaseSummary, true))
	enabled, err = store.IsEnabled(ctx, "tenant-1", FeatureCaseSummary)
	require.NoError(t, err)
	assert.True(t, enabled)

	// Roles accumulate and duplicates are ignored.
	require.NoError(t, store.AssignRole(ctx, "user-1", "user"))
	require.NoError(t, store.AssignRole(ctx, "user-1", "manager"))
	require.NoError(t, store.AssignRole(ctx, "user-1", "manager"))

	roles, err := store.RolesFor(ctx, "user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user", "manager"}, roles)

	roles, err = store.RolesFor(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, roles)
}
