package models

import "time"

// The types below map tables owned by the host forum. The service only reads them.

// User is the host's user directory row.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;not null" json:"username"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// Badge is a host-defined badge.
type Badge struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:255" json:"icon"`
	ImageURL    string `gorm:"size:1024" json:"image_url"`
	BadgeTypeID uint   `json:"badge_type_id"`
	Enabled     bool   `gorm:"not null" json:"enabled"`
}

func (Badge) TableName() string { return "badges" }

// UserBadge records that a user earned a badge. A badge may be granted more than once.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	BadgeID   uint      `gorm:"index;not null" json:"badge_id"`
	GrantedAt time.Time `json:"granted_at"`
}

func (UserBadge) TableName() string { return "user_badges" }

// Upload is a file stored by the host.
type Upload struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	Filesize  int64     `gorm:"not null;default:0" json:"filesize"`
	CreatedAt time.Time `json:"created_at"`
}

func (Upload) TableName() string { return "uploads" }

// PluginModels lists the tables this service owns.
func PluginModels() []interface{} {
	return []interface{}{
		&CheckinRecord{},
		&PointsLedgerEntry{},
		&ExtraLotteryRecord{},
		&TodoItem{},
		&BadgeCollectionEntry{},
		&CustomEmoji{},
	}
}

// HostModels lists the host tables, migrated only for local development and tests.
func HostModels() []interface{} {
	return []interface{}{&User{}, &Badge{}, &UserBadge{}, &Upload{}}
}
