package models

import "time"

// BadgeCollectionEntry is a badge a user chose to show on their wall.
type BadgeCollectionEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;uniqueIndex:idx_badge_collection_user_badge,priority:1;not null" json:"user_id"`
	BadgeID   uint      `gorm:"index;uniqueIndex:idx_badge_collection_user_badge,priority:2;not null" json:"badge_id"`
	Displayed bool      `gorm:"not null;default:true" json:"displayed"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Badge     Badge     `gorm:"foreignKey:BadgeID" json:"badge"`
}

func (BadgeCollectionEntry) TableName() string { return "user_badge_collections" }
