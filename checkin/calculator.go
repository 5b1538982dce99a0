// Package checkin implements the daily check-in streak decision logic.
//
// The calculator is a pure function over explicit inputs: it never touches the
// database or the clock by itself. Handlers load the user's state, call
// Evaluate, and persist the outcome inside their own transaction.
package checkin

import "time"

// MaxStreakXP caps the XP awarded for a single daily check-in no matter how
// long the streak grows.
const MaxStreakXP = 30

// Decision is the outcome of evaluating a check-in attempt.
type Decision struct {
	// CanCheckIn reports whether a check-in right now would be accepted.
	CanCheckIn bool `json:"can_check_in"`
	// PotentialXP is the XP a check-in right now would award. Zero when
	// CanCheckIn is false.
	PotentialXP int `json:"potential_xp"`
	// CurrentStreak is the streak as currently persisted (0 when the user
	// has never checked in).
	CurrentStreak int `json:"current_streak"`
	// NextStreak is the streak value to persist if the check-in is
	// confirmed. Equals CurrentStreak when CanCheckIn is false.
	NextStreak int `json:"next_streak"`
}

// Evaluate decides eligibility and reward for a check-in at now.
//
// Day boundaries are calendar-day boundaries in loc (nil means UTC). A
// lastCheckedInAt in the future sorts at or after today's midnight and is
// therefore treated as "already checked in today" rather than an error.
func Evaluate(now time.Time, lastCheckedInAt *time.Time, currentStreak int, loc *time.Location) Decision {
	if loc == nil {
		loc = time.UTC
	}
	if lastCheckedInAt == nil {
		return Decision{CanCheckIn: true, PotentialXP: 1, CurrentStreak: 0, NextStreak: 1}
	}

	local := now.In(loc)
	todayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	last := lastCheckedInAt.In(loc)
	switch {
	case !last.Before(todayStart):
		// Already checked in today (or clock skew put the record in the
		// future). Not eligible, streak unchanged.
		return Decision{CanCheckIn: false, PotentialXP: 0, CurrentStreak: currentStreak, NextStreak: currentStreak}
	case !last.Before(yesterdayStart):
		// Last check-in was yesterday: the streak continues.
		next := currentStreak + 1
		return Decision{CanCheckIn: true, PotentialXP: capXP(next), CurrentStreak: currentStreak, NextStreak: next}
	default:
		// Gap of more than one day: the streak restarts.
		return Decision{CanCheckIn: true, PotentialXP: 1, CurrentStreak: currentStreak, NextStreak: 1}
	}
}

func capXP(streak int) int {
	if streak > MaxStreakXP {
		return MaxStreakXP
	}
	return streak
}
