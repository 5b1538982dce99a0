package models

import "time"

// SecretCode is a single-use redemption code. Codes are stored uppercase and
// matched case-insensitively by normalizing lookups to uppercase.
//
// Once Used flips to true, UsedBy and UsedAt are immutable and the code can
// never be redeemed again.
type SecretCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Campaign  string     `gorm:"size:128;index;not null" json:"campaign"`
	BatchID   string     `gorm:"size:36;index" json:"batch_id"`
	Used      bool       `gorm:"default:false;index" json:"used"`
	UsedBy    string     `gorm:"size:64" json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
