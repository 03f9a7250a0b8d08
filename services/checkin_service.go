package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/bbsplus/models"
)

const (
	historyPageSize    = 30
	extraLotteryReason = "extra_lottery"
)

// CheckinOptions carries the check-in and lottery settings.
type CheckinOptions struct {
	BasePoints       int
	ConsecutiveBonus int
	LotteryEnabled   bool
	Prizes           PrizeTable
	ExtraLotteryCost int
	MaxExtraPerDay   int
	Location         *time.Location
}

// CheckinStats summarises a user's attendance.
type CheckinStats struct {
	TotalCheckins  int64    `json:"total_checkins"`
	TotalPoints    int      `json:"total_points"`
	ThisMonth      int      `json:"this_month"`
	ThisMonthDates []string `json:"this_month_dates"`
}

// CheckinStatus is the check-in page payload.
type CheckinStatus struct {
	CheckedInToday  bool                  `json:"checked_in_today"`
	ConsecutiveDays int                   `json:"consecutive_days"`
	TodayCheckin    *models.CheckinRecord `json:"today_checkin"`
	Stats           CheckinStats          `json:"stats"`
}

// LotteryStatus describes what the user may draw right now.
type LotteryStatus struct {
	Enabled             bool     `json:"enabled"`
	CanDraw             bool     `json:"can_draw"`
	CanBuyDraw          bool     `json:"can_buy_draw"`
	ExtraDrawCost       int      `json:"extra_draw_cost"`
	ExtraDrawsRemaining int      `json:"extra_draws_remaining"`
	UserPoints          int      `json:"user_points"`
	Prizes              []string `json:"prizes"`
	TodayPrize          *string  `json:"today_prize"`
}

// ExtraDrawResult is returned by a paid draw.
type ExtraDrawResult struct {
	Prize               string `json:"prize"`
	PointsSpent         int    `json:"points_spent"`
	RemainingPoints     int    `json:"remaining_points"`
	ExtraDrawsRemaining int    `json:"extra_draws_remaining"`
}

// CheckinService owns daily check-ins, the points balance and the lottery.
type CheckinService struct {
	db   *gorm.DB
	opts CheckinOptions
	now  func() time.Time
	intn func(n int) int
}

// NewCheckinService creates a CheckinService using the wall clock and math/rand/v2.
func NewCheckinService(db *gorm.DB, opts CheckinOptions) *CheckinService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &CheckinService{db: db, opts: opts, now: time.Now, intn: rand.IntN}
}

// WithClock replaces the time source.
func (s *CheckinService) WithClock(now func() time.Time) *CheckinService {
	s.now = now
	return s
}

// WithRandom replaces the draw source; intn must return a value in [0, n).
func (s *CheckinService) WithRandom(intn func(n int) int) *CheckinService {
	s.intn = intn
	return s
}

// Options returns the settings the service was built with.
func (s *CheckinService) Options() CheckinOptions {
	return s.opts
}

func (s *CheckinService) today() (now time.Time, today, yesterday string) {
	now = s.now().In(s.opts.Location)
	return now, dayKey(now, s.opts.Location), dayKey(now.AddDate(0, 0, -1), s.opts.Location)
}

// PointsFor returns the award for a check-in on the given streak day.
func (s *CheckinService) PointsFor(streak int) int {
	if streak < 1 {
		streak = 1
	}
	return s.opts.BasePoints + (streak-1)*s.opts.ConsecutiveBonus
}

// CheckIn records today's check-in. A second call on the same day returns ErrAlreadyCheckedIn.
func (s *CheckinService) CheckIn(ctx context.Context, userID uint) (*models.CheckinRecord, error) {
	now, today, yesterday := s.today()

	var record models.CheckinRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.CheckinRecord{}).
			Where("user_id = ? AND checkin_date = ?", userID, today).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyCheckedIn
		}

		streak := 1
		var prev models.CheckinRecord
		err := tx.Where("user_id = ? AND checkin_date = ?", userID, yesterday).First(&prev).Error
		switch {
		case err == nil:
			streak = prev.ConsecutiveDays + 1
		case !isRecordNotFound(err):
			return err
		}

		record = models.CheckinRecord{
			UserID:          userID,
			CheckinDate:     today,
			CheckedInAt:     now,
			ConsecutiveDays: streak,
			PointsEarned:    s.PointsFor(streak),
		}
		if err := tx.Create(&record).Error; err != nil {
			// the unique (user_id, checkin_date) index rejects a concurrent double submit
			if isDuplicateKey(err) {
				return ErrAlreadyCheckedIn
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCheckedIn) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("record check-in: %w", err)
	}
	return &record, nil
}

// TodayRecord returns today's check-in or nil.
func (s *CheckinService) TodayRecord(ctx context.Context, userID uint) (*models.CheckinRecord, error) {
	_, today, _ := s.today()
	var record models.CheckinRecord
	err := s.db.WithContext(ctx).Where("user_id = ? AND checkin_date = ?", userID, today).First(&record).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load today's check-in: %w", err)
	}
	return &record, nil
}

// CheckedInToday reports whether the user has a record for today.
func (s *CheckinService) CheckedInToday(ctx context.Context, userID uint) (bool, error) {
	record, err := s.TodayRecord(ctx, userID)
	return record != nil, err
}

// ConsecutiveDays computes the streak ending at the most recent check-in from history.
func (s *CheckinService) ConsecutiveDays(ctx context.Context, userID uint) (int, error) {
	var days []string
	err := s.db.WithContext(ctx).Model(&models.CheckinRecord{}).
		Where("user_id = ?", userID).
		Order("checkin_date DESC").
		Pluck("checkin_date", &days).Error
	if err != nil {
		return 0, fmt.Errorf("load check-in days: %w", err)
	}
	return ComputeStreak(days), nil
}

// Status builds the check-in page payload.
func (s *CheckinService) Status(ctx context.Context, userID uint) (*CheckinStatus, error) {
	now, _, _ := s.today()
	today, err := s.TodayRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	streak, err := s.ConsecutiveDays(ctx, userID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	stats := CheckinStats{ThisMonthDates: []string{}}
	if err := db.Model(&models.CheckinRecord{}).Where("user_id = ?", userID).Count(&stats.TotalCheckins).Error; err != nil {
		return nil, fmt.Errorf("count check-ins: %w", err)
	}
	if err := db.Model(&models.CheckinRecord{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points_earned),0)").
		Scan(&stats.TotalPoints).Error; err != nil {
		return nil, fmt.Errorf("sum check-in points: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.opts.Location)
	nextMonth := monthStart.AddDate(0, 1, 0)
	if err := db.Model(&models.CheckinRecord{}).
		Where("user_id = ? AND checkin_date >= ? AND checkin_date < ?", userID,
			dayKey(monthStart, s.opts.Location), dayKey(nextMonth, s.opts.Location)).
		Order("checkin_date ASC").
		Pluck("checkin_date", &stats.ThisMonthDates).Error; err != nil {
		return nil, fmt.Errorf("load this month's check-ins: %w", err)
	}
	stats.ThisMonth = len(stats.ThisMonthDates)

	return &CheckinStatus{
		CheckedInToday:  today != nil,
		ConsecutiveDays: streak,
		TodayCheckin:    today,
		Stats:           stats,
	}, nil
}

// History returns one page of check-ins, newest first, and whether more pages exist.
func (s *CheckinService) History(ctx context.Context, userID uint, page int) ([]models.CheckinRecord, bool, error) {
	if page < 0 {
		page = 0
	}
	var records []models.CheckinRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("checkin_date DESC").
		Offset(page * historyPageSize).
		Limit(historyPageSize + 1).
		Find(&records).Error
	if err != nil {
		return nil, false, fmt.Errorf("list check-ins: %w", err)
	}
	hasMore := len(records) > historyPageSize
	if hasMore {
		records = records[:historyPageSize]
	}
	return records, hasMore, nil
}

// Balance is the sum of check-in awards plus every ledger adjustment.
func (s *CheckinService) Balance(ctx context.Context, userID uint) (int, error) {
	return balanceOf(s.db.WithContext(ctx), userID)
}

func balanceOf(tx *gorm.DB, userID uint) (int, error) {
	var earned, adjusted int
	if err := tx.Model(&models.CheckinRecord{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points_earned),0)").
		Scan(&earned).Error; err != nil {
		return 0, fmt.Errorf("sum check-in points: %w", err)
	}
	if err := tx.Model(&models.PointsLedgerEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(delta),0)").
		Scan(&adjusted).Error; err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	return earned + adjusted, nil
}

func (s *CheckinService) extraDrawsUsed(tx *gorm.DB, userID uint, today string) (int, error) {
	var used int64
	err := tx.Model(&models.ExtraLotteryRecord{}).
		Where("user_id = ? AND draw_date = ?", userID, today).
		Count(&used).Error
	return int(used), err
}

// ExtraDrawsRemaining is the daily maximum minus today's paid draws, never below zero.
func (s *CheckinService) ExtraDrawsRemaining(ctx context.Context, userID uint) (int, error) {
	_, today, _ := s.today()
	used, err := s.extraDrawsUsed(s.db.WithContext(ctx), userID, today)
	if err != nil {
		return 0, fmt.Errorf("count extra draws: %w", err)
	}
	if remaining := s.opts.MaxExtraPerDay - used; remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

// LotteryStatus reports the user's draw options for today.
func (s *CheckinService) LotteryStatus(ctx context.Context, userID uint) (*LotteryStatus, error) {
	today, err := s.TodayRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	remaining, err := s.ExtraDrawsRemaining(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &LotteryStatus{
		Enabled:             s.opts.LotteryEnabled,
		ExtraDrawCost:       s.extraCost(s.opts.ExtraLotteryCost),
		ExtraDrawsRemaining: remaining,
		UserPoints:          balance,
		Prizes:              s.opts.Prizes.Prizes,
	}
	if status.Prizes == nil {
		status.Prizes = []string{}
	}
	if today != nil {
		status.TodayPrize = today.LotteryPrize
	}
	lotteryOpen := s.opts.LotteryEnabled && len(s.opts.Prizes.Prizes) > 0 && today != nil
	status.CanDraw = lotteryOpen && !hasPrize(today)
	status.CanBuyDraw = lotteryOpen && remaining > 0 && balance >= status.ExtraDrawCost
	return status, nil
}

func hasPrize(record *models.CheckinRecord) bool {
	return record != nil && record.LotteryPrize != nil && *record.LotteryPrize != ""
}

func (s *CheckinService) extraCost(cost int) int {
	if cost < 0 {
		return 0
	}
	return cost
}

func (s *CheckinService) draw() string {
	return WeightedDraw(s.opts.Prizes.Prizes, s.opts.Prizes.Weights, s.intn)
}

// DrawLottery runs the free daily draw and stores the prize on today's check-in.
func (s *CheckinService) DrawLottery(ctx context.Context, userID uint) (string, error) {
	if !s.opts.LotteryEnabled || len(s.opts.Prizes.Prizes) == 0 {
		return "", ErrNoChance
	}
	today, err := s.TodayRecord(ctx, userID)
	if err != nil {
		return "", err
	}
	if today == nil || hasPrize(today) {
		return "", ErrNoChance
	}

	prize := s.draw()
	// write-once: a concurrent draw that got there first leaves zero rows to update
	res := s.db.WithContext(ctx).Model(&models.CheckinRecord{}).
		Where("id = ? AND (lottery_prize IS NULL OR lottery_prize = '')", today.ID).
		Update("lottery_prize", prize)
	if res.Error != nil {
		return "", fmt.Errorf("store lottery prize: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", ErrNoChance
	}
	return prize, nil
}

// DrawExtraLottery spends cost points on one more draw today.
func (s *CheckinService) DrawExtraLottery(ctx context.Context, userID uint, cost int) (*ExtraDrawResult, error) {
	if !s.opts.LotteryEnabled || len(s.opts.Prizes.Prizes) == 0 {
		return nil, ErrNoChance
	}
	cost = s.extraCost(cost)
	now, today, _ := s.today()

	var result ExtraDrawResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// today's check-in row doubles as the per-user lock for paid draws
		var record models.CheckinRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND checkin_date = ?", userID, today).
			First(&record).Error
		if err != nil {
			if isRecordNotFound(err) {
				return ErrNoChance
			}
			return err
		}

		used, err := s.extraDrawsUsed(tx, userID, today)
		if err != nil {
			return err
		}
		if used >= s.opts.MaxExtraPerDay {
			return ErrQuotaExceeded
		}

		balance, err := balanceOf(tx, userID)
		if err != nil {
			return err
		}
		if balance < cost {
			return ErrInsufficientPoints
		}

		if err := tx.Create(&models.PointsLedgerEntry{
			UserID: userID,
			Delta:  -cost,
			Reason: extraLotteryReason,
		}).Error; err != nil {
			return err
		}

		prize := s.draw()
		if err := tx.Create(&models.ExtraLotteryRecord{
			UserID:      userID,
			DrawDate:    today,
			Prize:       prize,
			PointsSpent: cost,
			CreatedAt:   now,
		}).Error; err != nil {
			return err
		}

		result = ExtraDrawResult{
			Prize:               prize,
			PointsSpent:         cost,
			RemainingPoints:     balance - cost,
			ExtraDrawsRemaining: s.opts.MaxExtraPerDay - used - 1,
		}
		return nil
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return nil, err
		}
		return nil, fmt.Errorf("extra lottery draw: %w", err)
	}
	return &result, nil
}
