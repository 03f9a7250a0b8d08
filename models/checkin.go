package models

import "time"

// DayLayout is the format of day keys stored in CheckinDate and DrawDate columns.
const DayLayout = "2006-01-02"

// CheckinRecord stores one attendance row per user per calendar day.
type CheckinRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;uniqueIndex:idx_checkin_user_day,priority:1;not null" json:"user_id"`
	CheckinDate     string    `gorm:"size:10;index;uniqueIndex:idx_checkin_user_day,priority:2;not null" json:"checkin_date"`
	CheckedInAt     time.Time `gorm:"not null" json:"checked_in_at"`
	PointsEarned    int       `gorm:"not null;default:0" json:"points_earned"`
	ConsecutiveDays int       `gorm:"not null;default:1" json:"consecutive_days"`
	LotteryPrize    *string   `gorm:"size:255" json:"lottery_prize"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (CheckinRecord) TableName() string { return "user_checkins" }

// PointsLedgerEntry records a points adjustment that is not an attendance, such as
// paying for an extra lottery draw. Delta is negative for spending.
type PointsLedgerEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Delta     int       `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"size:64;not null" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (PointsLedgerEntry) TableName() string { return "user_points_ledger" }

// ExtraLotteryRecord is the append-only audit of paid extra draws.
type ExtraLotteryRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;index:idx_extra_lottery_user_day,priority:1;not null" json:"user_id"`
	DrawDate    string    `gorm:"size:10;index:idx_extra_lottery_user_day,priority:2;not null" json:"draw_date"`
	Prize       string    `gorm:"size:255;not null" json:"prize"`
	PointsSpent int       `gorm:"not null;default:0" json:"points_spent"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (ExtraLotteryRecord) TableName() string { return "extra_lottery_records" }
