package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/cppla/bbsplus/models"
)

func newBadgeFixture(t *testing.T) (*BadgeWallService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	mustCreate(t, db,
		&models.User{ID: 1, Username: "alice"},
		&models.User{ID: 2, Username: "bob"},
		&models.Badge{ID: 10, Name: "First Post", Enabled: true},
		&models.Badge{ID: 11, Name: "Helper", Enabled: true},
		&models.Badge{ID: 12, Name: "Legend", Enabled: true},
		&models.Badge{ID: 13, Name: "Retired", Enabled: false},
		&models.UserBadge{UserID: 1, BadgeID: 10},
		&models.UserBadge{UserID: 1, BadgeID: 10},
		&models.UserBadge{UserID: 1, BadgeID: 11},
		&models.UserBadge{UserID: 1, BadgeID: 12},
	)
	host := NewHostDirectory(db)
	return NewBadgeWallService(db, host, host), db
}

func TestCollectRequiresEarnedBadge(t *testing.T) {
	svc, _ := newBadgeFixture(t)
	if _, err := svc.Collect(context.Background(), 2, 10); !errors.Is(err, ErrNotEarned) {
		t.Fatalf("got %v, want ErrNotEarned", err)
	}
	if _, err := svc.Collect(context.Background(), 1, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown badge: got %v, want ErrNotFound", err)
	}
}

func TestCollectTwiceAndUncollect(t *testing.T) {
	svc, db := newBadgeFixture(t)
	ctx := context.Background()

	entry, err := svc.Collect(ctx, 1, 10)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if entry.Position != 0 || !entry.Displayed || entry.Badge.Name != "First Post" {
		t.Fatalf("entry = %+v", entry)
	}
	if _, err := svc.Collect(ctx, 1, 10); !errors.Is(err, ErrAlreadyCollected) {
		t.Fatalf("second collect: got %v, want ErrAlreadyCollected", err)
	}

	if err := svc.Uncollect(ctx, 1, 10); err != nil {
		t.Fatalf("uncollect: %v", err)
	}
	var rows int64
	db.Model(&models.BadgeCollectionEntry{}).Where("user_id = ?", 1).Count(&rows)
	if rows != 0 {
		t.Fatalf("rows = %d, want 0", rows)
	}
	if err := svc.Uncollect(ctx, 1, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("uncollect again: got %v, want ErrNotFound", err)
	}
}

func TestCollectAppendsAfterGap(t *testing.T) {
	svc, _ := newBadgeFixture(t)
	ctx := context.Background()
	for _, id := range []uint{10, 11} {
		if _, err := svc.Collect(ctx, 1, id); err != nil {
			t.Fatalf("collect %d: %v", id, err)
		}
	}
	if err := svc.Uncollect(ctx, 1, 10); err != nil {
		t.Fatalf("uncollect: %v", err)
	}
	entry, err := svc.Collect(ctx, 1, 12)
	if err != nil {
		t.Fatalf("collect 12: %v", err)
	}
	if entry.Position != 2 {
		t.Fatalf("position = %d, want 2", entry.Position)
	}
}

func TestWallFlagsBadges(t *testing.T) {
	svc, _ := newBadgeFixture(t)
	ctx := context.Background()
	if _, err := svc.Collect(ctx, 1, 11); err != nil {
		t.Fatalf("collect: %v", err)
	}

	wall, err := svc.Wall(ctx, 1)
	if err != nil {
		t.Fatalf("wall: %v", err)
	}
	if wall.Stats != (BadgeWallStats{Collected: 1, Displayed: 1, Earned: 3, Total: 3}) {
		t.Fatalf("stats = %+v", wall.Stats)
	}
	for _, b := range wall.AllBadges {
		if b.ID == 13 {
			t.Fatalf("disabled badge listed")
		}
		if b.Collected != (b.ID == 11) || !b.Earned {
			t.Fatalf("badge %d flags = %+v", b.ID, b)
		}
	}
}

func TestPublicWallShowsDisplayedOnly(t *testing.T) {
	svc, _ := newBadgeFixture(t)
	ctx := context.Background()
	for _, id := range []uint{10, 11} {
		if _, err := svc.Collect(ctx, 1, id); err != nil {
			t.Fatalf("collect %d: %v", id, err)
		}
	}
	if _, err := svc.SetDisplayed(ctx, 1, 10, false); err != nil {
		t.Fatalf("hide: %v", err)
	}

	wall, err := svc.PublicWall(ctx, 1)
	if err != nil {
		t.Fatalf("public wall: %v", err)
	}
	if wall.Count != 1 || wall.Collections[0].BadgeID != 11 || wall.User.Username != "alice" {
		t.Fatalf("wall = %+v", wall)
	}

	empty, err := svc.PublicWall(ctx, 404)
	if err != nil {
		t.Fatalf("unknown user: %v", err)
	}
	if empty.User != nil || len(empty.Collections) != 0 {
		t.Fatalf("unknown user wall = %+v", empty)
	}
}

func TestBadgeReorder(t *testing.T) {
	svc, _ := newBadgeFixture(t)
	ctx := context.Background()
	for _, id := range []uint{10, 11, 12} {
		if _, err := svc.Collect(ctx, 1, id); err != nil {
			t.Fatalf("collect %d: %v", id, err)
		}
	}
	if _, err := svc.Reorder(ctx, 1, 12, 0); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	wall, err := svc.Wall(ctx, 1)
	if err != nil {
		t.Fatalf("wall: %v", err)
	}
	got := []uint{}
	for _, e := range wall.Collections {
		got = append(got, e.BadgeID)
	}
	if len(got) != 3 || got[0] != 12 || got[1] != 10 || got[2] != 11 {
		t.Fatalf("order = %v", got)
	}
}
