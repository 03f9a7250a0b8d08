package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cppla/bbsplus/models"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(days int) { c.now = c.now.AddDate(0, 0, days) }

func newCheckinFixture(t *testing.T, mutate func(*CheckinOptions)) (*CheckinService, *fakeClock) {
	t.Helper()
	opts := CheckinOptions{
		BasePoints:       10,
		ConsecutiveBonus: 5,
		LotteryEnabled:   true,
		Prizes:           ParsePrizeTable("big|small", "10|90"),
		ExtraLotteryCost: 5,
		MaxExtraPerDay:   2,
		Location:         time.UTC,
	}
	if mutate != nil {
		mutate(&opts)
	}
	clock := &fakeClock{now: time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)}
	svc := NewCheckinService(newTestDB(t), opts).
		WithClock(clock.Now).
		WithRandom(func(int) int { return 0 })
	return svc, clock
}

func TestCheckInStreakAndPoints(t *testing.T) {
	svc, clock := newCheckinFixture(t, nil)
	ctx := context.Background()

	steps := []struct {
		advance    int
		wantStreak int
		wantPoints int
	}{
		{0, 1, 10},
		{1, 2, 15},
		{1, 3, 20},
		{2, 1, 10},
	}
	for i, step := range steps {
		clock.advance(step.advance)
		record, err := svc.CheckIn(ctx, 7)
		if err != nil {
			t.Fatalf("step %d: check in: %v", i, err)
		}
		if record.ConsecutiveDays != step.wantStreak || record.PointsEarned != step.wantPoints {
			t.Fatalf("step %d: streak=%d points=%d, want %d/%d",
				i, record.ConsecutiveDays, record.PointsEarned, step.wantStreak, step.wantPoints)
		}
		streak, err := svc.ConsecutiveDays(ctx, 7)
		if err != nil {
			t.Fatalf("step %d: consecutive days: %v", i, err)
		}
		if streak != step.wantStreak {
			t.Fatalf("step %d: ConsecutiveDays = %d, want %d", i, streak, step.wantStreak)
		}
	}
}

func TestCheckInTwiceSameDay(t *testing.T) {
	svc, _ := newCheckinFixture(t, nil)
	ctx := context.Background()

	if _, err := svc.CheckIn(ctx, 1); err != nil {
		t.Fatalf("first check in: %v", err)
	}
	_, err := svc.CheckIn(ctx, 1)
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("second check in: got %v, want ErrAlreadyCheckedIn", err)
	}

	var rows int64
	svc.db.Model(&models.CheckinRecord{}).Where("user_id = ?", 1).Count(&rows)
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}
}

func TestDuplicateCheckinRowIsDetected(t *testing.T) {
	svc, clock := newCheckinFixture(t, nil)
	// a row written by a concurrent request that the count did not see
	err := svc.db.Create(&models.CheckinRecord{
		UserID: 3, CheckinDate: clock.now.Format(models.DayLayout), CheckedInAt: clock.now,
	}).Error
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	dup := svc.db.Create(&models.CheckinRecord{
		UserID: 3, CheckinDate: clock.now.Format(models.DayLayout), CheckedInAt: clock.now,
	}).Error
	if !isDuplicateKey(dup) {
		t.Fatalf("isDuplicateKey(%v) = false", dup)
	}
}

func TestStatusAndHistory(t *testing.T) {
	svc, clock := newCheckinFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.CheckIn(ctx, 2); err != nil {
			t.Fatalf("check in %d: %v", i, err)
		}
		clock.advance(1)
	}
	clock.advance(-1)

	status, err := svc.Status(ctx, 2)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.CheckedInToday || status.ConsecutiveDays != 3 {
		t.Fatalf("status = %+v", status)
	}
	if status.Stats.TotalCheckins != 3 || status.Stats.TotalPoints != 45 || status.Stats.ThisMonth != 3 {
		t.Fatalf("stats = %+v", status.Stats)
	}

	records, hasMore, err := svc.History(ctx, 2, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 3 || hasMore {
		t.Fatalf("history len=%d hasMore=%v", len(records), hasMore)
	}
	if records[0].CheckinDate != "2024-03-12" {
		t.Fatalf("newest first: got %s", records[0].CheckinDate)
	}
}

func TestDrawLotteryOncePerDay(t *testing.T) {
	svc, _ := newCheckinFixture(t, nil)
	ctx := context.Background()

	if _, err := svc.DrawLottery(ctx, 5); !errors.Is(err, ErrNoChance) {
		t.Fatalf("draw before check in: got %v, want ErrNoChance", err)
	}
	if _, err := svc.CheckIn(ctx, 5); err != nil {
		t.Fatalf("check in: %v", err)
	}
	prize, err := svc.DrawLottery(ctx, 5)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if prize != "big" {
		t.Fatalf("prize = %q, want big", prize)
	}
	if _, err := svc.DrawLottery(ctx, 5); !errors.Is(err, ErrNoChance) {
		t.Fatalf("second draw: got %v, want ErrNoChance", err)
	}

	status, err := svc.LotteryStatus(ctx, 5)
	if err != nil {
		t.Fatalf("lottery status: %v", err)
	}
	if status.CanDraw || status.TodayPrize == nil || *status.TodayPrize != "big" {
		t.Fatalf("lottery status = %+v", status)
	}
}

func TestDrawLotteryDisabled(t *testing.T) {
	svc, _ := newCheckinFixture(t, func(o *CheckinOptions) { o.LotteryEnabled = false })
	ctx := context.Background()
	if _, err := svc.CheckIn(ctx, 5); err != nil {
		t.Fatalf("check in: %v", err)
	}
	if _, err := svc.DrawLottery(ctx, 5); !errors.Is(err, ErrNoChance) {
		t.Fatalf("got %v, want ErrNoChance", err)
	}
}

func TestDrawExtraLottery(t *testing.T) {
	svc, _ := newCheckinFixture(t, nil)
	ctx := context.Background()

	if _, err := svc.DrawExtraLottery(ctx, 9, 5); !errors.Is(err, ErrNoChance) {
		t.Fatalf("without check in: got %v, want ErrNoChance", err)
	}
	if _, err := svc.CheckIn(ctx, 9); err != nil {
		t.Fatalf("check in: %v", err)
	}
	if _, err := svc.DrawExtraLottery(ctx, 9, 50); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("too expensive: got %v, want ErrInsufficientPoints", err)
	}

	first, err := svc.DrawExtraLottery(ctx, 9, 5)
	if err != nil {
		t.Fatalf("first extra draw: %v", err)
	}
	if first.PointsSpent != 5 || first.RemainingPoints != 5 || first.ExtraDrawsRemaining != 1 {
		t.Fatalf("first result = %+v", first)
	}
	if _, err := svc.DrawExtraLottery(ctx, 9, 5); err != nil {
		t.Fatalf("second extra draw: %v", err)
	}
	if _, err := svc.DrawExtraLottery(ctx, 9, 5); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("third extra draw: got %v, want ErrQuotaExceeded", err)
	}

	balance, err := svc.Balance(ctx, 9)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("balance = %d, want 0", balance)
	}

	// spending must not touch attendance rows
	streak, err := svc.ConsecutiveDays(ctx, 9)
	if err != nil || streak != 1 {
		t.Fatalf("streak = %d, %v", streak, err)
	}
	var ledger int64
	svc.db.Model(&models.PointsLedgerEntry{}).Where("user_id = ?", 9).Count(&ledger)
	if ledger != 2 {
		t.Fatalf("ledger entries = %d, want 2", ledger)
	}
}
