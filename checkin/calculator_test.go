package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func ts(t time.Time) *time.Time { return &t }

func TestEvaluate(t *testing.T) {
	today := time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		last          *time.Time
		currentStreak int
		want          Decision
	}{
		{
			name: "never checked in",
			last: nil,
			want: Decision{CanCheckIn: true, PotentialXP: 1, CurrentStreak: 0, NextStreak: 1},
		},
		{
			name:          "checked in earlier today",
			last:          ts(time.Date(2024, 5, 14, 2, 0, 0, 0, time.UTC)),
			currentStreak: 5,
			want:          Decision{CanCheckIn: false, PotentialXP: 0, CurrentStreak: 5, NextStreak: 5},
		},
		{
			name:          "checked in yesterday continues streak",
			last:          ts(time.Date(2024, 5, 13, 10, 0, 0, 0, time.UTC)),
			currentStreak: 5,
			want:          Decision{CanCheckIn: true, PotentialXP: 6, CurrentStreak: 5, NextStreak: 6},
		},
		{
			name:          "gap of two days resets streak",
			last:          ts(time.Date(2024, 5, 12, 23, 59, 59, 0, time.UTC)),
			currentStreak: 17,
			want:          Decision{CanCheckIn: true, PotentialXP: 1, CurrentStreak: 17, NextStreak: 1},
		},
		{
			name:          "long streak caps at 30 XP",
			last:          ts(time.Date(2024, 5, 13, 12, 0, 0, 0, time.UTC)),
			currentStreak: 45,
			want:          Decision{CanCheckIn: true, PotentialXP: 30, CurrentStreak: 45, NextStreak: 46},
		},
		{
			name:          "streak 29 awards uncapped 30",
			last:          ts(time.Date(2024, 5, 13, 12, 0, 0, 0, time.UTC)),
			currentStreak: 29,
			want:          Decision{CanCheckIn: true, PotentialXP: 30, CurrentStreak: 29, NextStreak: 30},
		},
		{
			name:          "future timestamp treated as already checked in",
			last:          ts(time.Date(2024, 5, 15, 1, 0, 0, 0, time.UTC)),
			currentStreak: 3,
			want:          Decision{CanCheckIn: false, PotentialXP: 0, CurrentStreak: 3, NextStreak: 3},
		},
		{
			name:          "yesterday midnight exactly still counts",
			last:          ts(time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)),
			currentStreak: 1,
			want:          Decision{CanCheckIn: true, PotentialXP: 2, CurrentStreak: 1, NextStreak: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(today, tt.last, tt.currentStreak, time.UTC)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateTimezoneBoundary(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)

	// 23:30 local yesterday, evaluated at 00:30 local today: the streak
	// continues even though less than two hours passed.
	last := time.Date(2024, 5, 13, 15, 30, 0, 0, time.UTC) // 23:30 +08
	now := time.Date(2024, 5, 13, 16, 30, 0, 0, time.UTC)  // 00:30 +08 next day

	got := Evaluate(now, &last, 3, loc)
	assert.True(t, got.CanCheckIn)
	assert.Equal(t, 4, got.NextStreak)
	assert.Equal(t, 4, got.PotentialXP)
}

func TestEvaluateSameDayIdempotent(t *testing.T) {
	now := time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)

	first := Evaluate(now, nil, 0, time.UTC)
	assert.True(t, first.CanCheckIn)

	// Simulate the handler persisting the check-in, then a second attempt
	// on the same day.
	second := Evaluate(now, &now, first.NextStreak, time.UTC)
	assert.False(t, second.CanCheckIn)
	assert.Zero(t, second.PotentialXP)
	assert.Equal(t, first.NextStreak, second.NextStreak)
}

func TestEvaluateProperties(t *testing.T) {
	base := time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)

	rapid.Check(t, func(rt *rapid.T) {
		streak := rapid.IntRange(0, 500).Draw(rt, "streak")
		nowOffset := rapid.Int64Range(0, 86399).Draw(rt, "nowOffset")
		lastOffset := rapid.Int64Range(-30*86400, 2*86400).Draw(rt, "lastOffset")

		now := base.Add(time.Duration(nowOffset) * time.Second)
		last := base.Add(time.Duration(lastOffset) * time.Second)

		got := Evaluate(now, &last, streak, time.UTC)

		// XP never exceeds the cap and is zero exactly when ineligible.
		if got.PotentialXP > MaxStreakXP {
			rt.Fatalf("potential XP %d exceeds cap", got.PotentialXP)
		}
		if got.CanCheckIn == (got.PotentialXP == 0) {
			rt.Fatalf("eligibility %v inconsistent with XP %d", got.CanCheckIn, got.PotentialXP)
		}

		// Anything before yesterday's midnight resets the streak to 1.
		if lastOffset < -86400 {
			if !got.CanCheckIn || got.NextStreak != 1 {
				rt.Fatalf("stale check-in should reset: %+v", got)
			}
		}

		// Anything today or later is a same-day rejection.
		if lastOffset >= 0 {
			if got.CanCheckIn || got.NextStreak != streak {
				rt.Fatalf("same-day check-in should be rejected: %+v", got)
			}
		}
	})
}
