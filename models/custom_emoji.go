package models

import "time"

// CustomEmoji is a named image upload a user registered as a personal emoji.
type CustomEmoji struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;uniqueIndex:idx_custom_emoji_user_name,priority:1;not null" json:"user_id"`
	Name       string    `gorm:"size:50;uniqueIndex:idx_custom_emoji_user_name,priority:2;not null" json:"name"`
	URL        string    `gorm:"size:1024;not null" json:"url"`
	UploadID   uint      `json:"upload_id"`
	UsageCount int       `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (CustomEmoji) TableName() string { return "custom_emojis" }
