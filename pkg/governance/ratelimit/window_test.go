package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(hour, min, sec int) time.Time {
	return time.Date(2026, time.March, 14, hour, min, sec, 0, time.UTC)
}

func TestWindowKey(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"mid window", ts(14, 37, 22), "2026-03-14T14:30"},
		{"exact hour", ts(14, 0, 0), "2026-03-14T14:00"},
		{"end of hour", ts(14, 59, 59), "2026-03-14T14:50"},
		{"just before boundary", ts(14, 9, 59), "2026-03-14T14:00"},
		{"on boundary", ts(14, 10, 0), "2026-03-14T14:10"},
		{"early morning", ts(0, 5, 0), "2026-03-14T00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WindowKey(tt.in))
		})
	}
}

func TestWindowKey_MinuteAlwaysMultipleOfTen(t *testing.T) {
	start := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 24*60; i++ {
		at := start.Add(time.Duration(i) * time.Minute)
		key := WindowKey(at)

		parsed, err := time.Parse("2006-01-02T15:04", key)
		assert.NoError(t, err)
		assert.Zero(t, parsed.Minute()%10, "key %s", key)
		assert.False(t, parsed.After(at))
	}
}

func TestWindowKey_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2026, time.March, 14, 16, 37, 0, 0, loc)

	assert.Equal(t, "2026-03-14T14:30", WindowKey(local))
}

func TestWindowStart_SameWithinWindow(t *testing.T) {
	assert.Equal(t, WindowStart(ts(14, 30, 0)), WindowStart(ts(14, 39, 59)))
	assert.NotEqual(t, WindowStart(ts(14, 39, 59)), WindowStart(ts(14, 40, 0)))
}

func TestNextWindow(t *testing.T) {
	next := NextWindow(ts(14, 37, 22))
	assert.Equal(t, ts(14, 40, 0), next)
}
