package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/bbsplus/models"
)

// BadgeView is a host badge flagged against one user's grants and collection.
type BadgeView struct {
	models.Badge
	Earned    bool `json:"earned"`
	Collected bool `json:"collected"`
}

// BadgeWallStats counts the wall.
type BadgeWallStats struct {
	Collected int `json:"collected"`
	Displayed int `json:"displayed"`
	Earned    int `json:"earned"`
	Total     int `json:"total"`
}

// BadgeWall is the owner's wall page.
type BadgeWall struct {
	Collections  []models.BadgeCollectionEntry `json:"collections"`
	EarnedBadges []BadgeView                   `json:"earned_badges"`
	AllBadges    []BadgeView                   `json:"all_badges"`
	Stats        BadgeWallStats                `json:"stats"`
}

// PublicBadgeWall is what other users see.
type PublicBadgeWall struct {
	User        *models.User                  `json:"user"`
	Collections []models.BadgeCollectionEntry `json:"collections"`
	Count       int                           `json:"count"`
}

// BadgeWallService manages a user's curated badge collection.
type BadgeWallService struct {
	db     *gorm.DB
	badges BadgeSource
	users  UserDirectory
}

// NewBadgeWallService creates a BadgeWallService.
func NewBadgeWallService(db *gorm.DB, badges BadgeSource, users UserDirectory) *BadgeWallService {
	return &BadgeWallService{db: db, badges: badges, users: users}
}

func collectionPartition(userID uint) partition {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func (s *BadgeWallService) collections(ctx context.Context, userID uint, displayedOnly bool) ([]models.BadgeCollectionEntry, error) {
	q := s.db.WithContext(ctx).Preload("Badge").Where("user_id = ?", userID)
	if displayedOnly {
		q = q.Where("displayed = ?", true)
	}
	entries := []models.BadgeCollectionEntry{}
	if err := q.Order("position ASC").Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list badge collection: %w", err)
	}
	return entries, nil
}

// Wall builds the owner's view: the collection plus every badge flagged earned/collected.
func (s *BadgeWallService) Wall(ctx context.Context, userID uint) (*BadgeWall, error) {
	entries, err := s.collections(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	earned, err := s.badges.EarnedBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	enabled, err := s.badges.EnabledBadges(ctx)
	if err != nil {
		return nil, err
	}

	collected := make(map[uint]bool, len(entries))
	wall := &BadgeWall{Collections: entries}
	for _, e := range entries {
		collected[e.BadgeID] = true
		if e.Displayed {
			wall.Stats.Displayed++
		}
	}
	earnedSet := make(map[uint]bool, len(earned))
	wall.EarnedBadges = make([]BadgeView, 0, len(earned))
	for _, b := range earned {
		earnedSet[b.ID] = true
		wall.EarnedBadges = append(wall.EarnedBadges, BadgeView{Badge: b, Earned: true, Collected: collected[b.ID]})
	}
	wall.AllBadges = make([]BadgeView, 0, len(enabled))
	for _, b := range enabled {
		wall.AllBadges = append(wall.AllBadges, BadgeView{Badge: b, Earned: earnedSet[b.ID], Collected: collected[b.ID]})
	}

	wall.Stats.Collected = len(entries)
	wall.Stats.Earned = len(earned)
	wall.Stats.Total = len(enabled)
	return wall, nil
}

// PublicWall lists the displayed part of a user's collection. An unknown user yields an empty wall.
func (s *BadgeWallService) PublicWall(ctx context.Context, userID uint) (*PublicBadgeWall, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return &PublicBadgeWall{Collections: []models.BadgeCollectionEntry{}}, nil
		}
		return nil, err
	}
	entries, err := s.collections(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	return &PublicBadgeWall{User: user, Collections: entries, Count: len(entries)}, nil
}

// Count returns how many badges the user has collected.
func (s *BadgeWallService) Count(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.BadgeCollectionEntry{}).Where("user_id = ?", userID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count badge collection: %w", err)
	}
	return n, nil
}

// Collect adds an earned badge to the end of the user's wall.
func (s *BadgeWallService) Collect(ctx context.Context, userID, badgeID uint) (*models.BadgeCollectionEntry, error) {
	badge, err := s.badges.FindBadge(ctx, badgeID)
	if err != nil {
		return nil, err
	}
	earned, err := s.badges.HasBadge(ctx, userID, badgeID)
	if err != nil {
		return nil, err
	}
	if !earned {
		return nil, ErrNotEarned
	}

	entry := models.BadgeCollectionEntry{UserID: userID, BadgeID: badgeID, Displayed: true}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := collectionPartition(userID)
		if err := lockPartition(tx, &models.BadgeCollectionEntry{}, scope); err != nil {
			return err
		}
		var exists int64
		if err := scope(tx.Model(&models.BadgeCollectionEntry{})).Where("badge_id = ?", badgeID).Count(&exists).Error; err != nil {
			return err
		}
		if exists > 0 {
			return ErrAlreadyCollected
		}
		pos, err := nextPosition(tx, &models.BadgeCollectionEntry{}, scope)
		if err != nil {
			return err
		}
		entry.Position = pos
		return tx.Omit("Badge").Create(&entry).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAlreadyCollected
		}
		if KindOf(err) != KindInternal {
			return nil, err
		}
		return nil, fmt.Errorf("collect badge: %w", err)
	}
	entry.Badge = *badge
	return &entry, nil
}

// Uncollect removes a badge from the wall. Other positions are left as they are.
func (s *BadgeWallService) Uncollect(ctx context.Context, userID, badgeID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Delete(&models.BadgeCollectionEntry{})
	if res.Error != nil {
		return fmt.Errorf("uncollect badge: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BadgeWallService) findEntry(tx *gorm.DB, userID, badgeID uint) (*models.BadgeCollectionEntry, error) {
	var entry models.BadgeCollectionEntry
	if err := tx.Where("user_id = ? AND badge_id = ?", userID, badgeID).First(&entry).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// SetDisplayed shows or hides a collected badge on the public wall.
func (s *BadgeWallService) SetDisplayed(ctx context.Context, userID, badgeID uint, displayed bool) (*models.BadgeCollectionEntry, error) {
	db := s.db.WithContext(ctx)
	entry, err := s.findEntry(db, userID, badgeID)
	if err != nil {
		if KindOf(err) != KindInternal {
			return nil, err
		}
		return nil, fmt.Errorf("load badge collection entry: %w", err)
	}
	if err := db.Model(entry).Update("displayed", displayed).Error; err != nil {
		return nil, fmt.Errorf("update badge display: %w", err)
	}
	entry.Displayed = displayed
	return entry, nil
}

// Reorder moves a collected badge to newPosition. Positions may have gaps, so the
// target is clamped to [0, highest position].
func (s *BadgeWallService) Reorder(ctx context.Context, userID, badgeID uint, newPosition int) (*models.BadgeCollectionEntry, error) {
	var entry *models.BadgeCollectionEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := collectionPartition(userID)
		if err := lockPartition(tx, &models.BadgeCollectionEntry{}, scope); err != nil {
			return err
		}
		current, err := s.findEntry(tx, userID, badgeID)
		if err != nil {
			return err
		}
		entry = current

		next, err := nextPosition(tx, &models.BadgeCollectionEntry{}, scope)
		if err != nil {
			return err
		}
		target := clampPosition(newPosition, next)
		if target == current.Position {
			return nil
		}
		if err := shiftForMove(tx, &models.BadgeCollectionEntry{}, scope, current.Position, target); err != nil {
			return err
		}
		current.Position = target
		return tx.Model(current).UpdateColumn("position", target).Error
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return nil, err
		}
		return nil, fmt.Errorf("reorder badge collection: %w", err)
	}
	return entry, nil
}
