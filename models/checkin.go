package models

import "time"

// CheckIn stores one successful daily check-in per user per day.
type CheckIn struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	CheckinDate    time.Time `gorm:"index;not null" json:"checkin_date"`
	XPAwarded      int       `json:"xp_awarded"`
	StreakAchieved int       `json:"streak_achieved"`
	CreatedAt      time.Time `json:"created_at"`
}
