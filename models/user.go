package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a wallet-authenticated SolQuest player. The wallet address
// is the identity; there are no password credentials.
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Wallet          string         `gorm:"size:64;uniqueIndex;not null" json:"wallet"`
	Username        string         `gorm:"size:64" json:"username"`
	AvatarURL       string         `gorm:"size:512" json:"avatar_url"`
	XP              int            `gorm:"default:0" json:"xp"`
	CurrentStreak   int            `gorm:"default:0" json:"current_streak"`
	LastCheckedInAt *time.Time     `json:"last_checked_in_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
