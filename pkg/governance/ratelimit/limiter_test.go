package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/wellspring/pkg/config"
)

func testLimiter(t *testing.T, userLimit, tenantLimit int64) (*Limiter, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	limiter, err := NewLimiter(&config.RateLimitConfig{
		UserLimit:   userLimit,
		TenantLimit: tenantLimit,
	}, store)
	require.NoError(t, err)
	return limiter, store
}

func TestAllow_WithinLimits(t *testing.T) {
	limiter, _ := testLimiter(t, 30, 200)
	now := ts(14, 37, 22)

	decision, err := limiter.Allow(context.Background(), "user-1", "tenant-1", now)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	require.Len(t, decision.Usages, 2)

	userUsage := decision.GetUsage(ScopeUser)
	require.NotNil(t, userUsage)
	assert.Equal(t, int64(1), userUsage.Current)
	assert.Equal(t, int64(29), userUsage.Remaining)
	assert.Equal(t, "2026-03-14T14:30", userUsage.WindowKey)
}

func TestAllow_UserBoundary(t *testing.T) {
	limiter, _ := testLimiter(t, 30, 200)
	ctx := context.Background()
	now := ts(14, 0, 0)

	// 30 requests pass.
	for i := 0; i < 30; i++ {
		decision, err := limiter.Allow(ctx, "user-1", "tenant-1", now)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}

	// The 31st is blocked with scope user.
	_, err := limiter.Allow(ctx, "user-1", "tenant-1", now)
	require.Error(t, err)

	exceeded := GetExceeded(err)
	require.NotNil(t, exceeded)
	assert.Equal(t, ScopeUser, exceeded.Scope)
	assert.Equal(t, "2026-03-14T14:00", exceeded.WindowKey)
}

func TestAllow_TenantBoundary(t *testing.T) {
	limiter, _ := testLimiter(t, 30, 200)
	ctx := context.Background()
	now := ts(9, 15, 0)

	// 200 requests spread across users so no user limit trips.
	for i := 0; i < 200; i++ {
		userID := fmt.Sprintf("user-%d", i)
		decision, err := limiter.Allow(ctx, userID, "tenant-1", now)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}

	_, err := limiter.Allow(ctx, "fresh-user", "tenant-1", now)
	require.Error(t, err)

	exceeded := GetExceeded(err)
	require.NotNil(t, exceeded)
	assert.Equal(t, ScopeTenant, exceeded.Scope)
}

func TestAllow_UserScopeWinsWhenBothExceeded(t *testing.T) {
	limiter, store := testLimiter(t, 30, 200)
	ctx := context.Background()
	now := ts(10, 0, 0)
	windowKey := WindowKey(now)

	// Force both counters over their limits.
	for i := 0; i < 31; i++ {
		_, err := store.Increment(ctx, ScopeUser, "user-1", windowKey)
		require.NoError(t, err)
	}
	for i := 0; i < 201; i++ {
		_, err := store.Increment(ctx, ScopeTenant, "tenant-1", windowKey)
		require.NoError(t, err)
	}

	_, err := limiter.Allow(ctx, "user-1", "tenant-1", now)
	require.Error(t, err)

	exceeded := GetExceeded(err)
	require.NotNil(t, exceeded)
	assert.Equal(t, ScopeUser, exceeded.Scope)
}

func TestAllow_WindowRollover(t *testing.T) {
	limiter, _ := testLimiter(t, 2, 200)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := limiter.Allow(ctx, "user-1", "tenant-1", ts(14, 5, 0))
		require.NoError(t, err)
	}
	_, err := limiter.Allow(ctx, "user-1", "tenant-1", ts(14, 9, 59))
	require.Error(t, err)

	// The next window starts a fresh count.
	decision, err := limiter.Allow(ctx, "user-1", "tenant-1", ts(14, 10, 0))
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(1), decision.GetUsage(ScopeUser).Current)
}

func TestAllow_UsersIsolated(t *testing.T) {
	limiter, _ := testLimiter(t, 1, 200)
	ctx := context.Background()
	now := ts(8, 0, 0)

	_, err := limiter.Allow(ctx, "user-1", "tenant-1", now)
	require.NoError(t, err)
	_, err = limiter.Allow(ctx, "user-1", "tenant-1", now)
	require.Error(t, err)

	// A different user in the same tenant is unaffected.
	decision, err := limiter.Allow(ctx, "user-2", "tenant-1", now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestAllow_Disabled(t *testing.T) {
	store := NewMemoryStore()
	limiter, err := NewLimiter(&config.RateLimitConfig{
		Enabled:     config.BoolPtr(false),
		UserLimit:   1,
		TenantLimit: 1,
	}, store)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		decision, err := limiter.Allow(context.Background(), "user-1", "tenant-1", ts(8, 0, 0))
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}
	assert.Zero(t, store.Size())
}

func TestAllow_RequiresIdentifiers(t *testing.T) {
	limiter, _ := testLimiter(t, 30, 200)

	_, err := limiter.Allow(context.Background(), "", "tenant-1", ts(8, 0, 0))
	assert.Error(t, err)

	_, err = limiter.Allow(context.Background(), "user-1", "", ts(8, 0, 0))
	assert.Error(t, err)
}

func TestAllow_ConcurrentIncrementsNeverOvershoot(t *testing.T) {
	limiter, _ := testLimiter(t, 30, 200)
	ctx := context.Background()
	now := ts(11, 30, 0)

	var wg sync.WaitGroup
	allowed := make(chan struct{}, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := limiter.Allow(ctx, "user-1", "tenant-1", now); err == nil {
				allowed <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(allowed)

	assert.Equal(t, 30, len(allowed))
}

func TestCheck_DoesNotConsumeQuota(t *testing.T) {
	limiter, store := testLimiter(t, 30, 200)
	ctx := context.Background()
	now := ts(12, 0, 0)

	_, err := limiter.Allow(ctx, "user-1", "tenant-1", now)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		decision, err := limiter.Check(ctx, "user-1", "tenant-1", now)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, int64(1), decision.GetUsage(ScopeUser).Current)
	}
	assert.Equal(t, 2, store.Size())
}

func TestPurgeStale(t *testing.T) {
	limiter, store := testLimiter(t, 30, 200)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "user-1", "tenant-1", ts(9, 0, 0))
	require.NoError(t, err)
	_, err = limiter.Allow(ctx, "user-1", "tenant-1", ts(14, 30, 0))
	require.NoError(t, err)
	assert.Equal(t, 4, store.Size())

	// Purging at 14:35 drops everything before the previous window.
	require.NoError(t, limiter.PurgeStale(ctx, ts(14, 35, 0)))
	assert.Equal(t, 2, store.Size())

	count, err := store.Get(ctx, ScopeUser, "user-1", WindowKey(ts(14, 30, 0)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
