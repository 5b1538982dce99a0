package models

import (
	"time"

	"gorm.io/gorm"
)

// Quest is a task users complete for XP. Description may contain HTML
// authored by admins; it is sanitized before storage.
type Quest struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"size:64;index" json:"category"`
	XPReward    int            `gorm:"not null" json:"xp_reward"`
	Active      bool           `gorm:"default:true;index" json:"active"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// QuestCompletion records that a user finished a quest. The composite unique
// index makes repeat completion a constraint violation, not a race.
type QuestCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex:idx_user_quest;not null" json:"user_id"`
	QuestID     uint      `gorm:"uniqueIndex:idx_user_quest;not null" json:"quest_id"`
	XPAwarded   int       `json:"xp_awarded"`
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}
