package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/bbsplus/models"
)

// UserDirectory looks up host users.
type UserDirectory interface {
	FindUser(ctx context.Context, userID uint) (*models.User, error)
}

// BadgeSource answers questions about host badges and grants.
type BadgeSource interface {
	FindBadge(ctx context.Context, badgeID uint) (*models.Badge, error)
	HasBadge(ctx context.Context, userID, badgeID uint) (bool, error)
	EarnedBadges(ctx context.Context, userID uint) ([]models.Badge, error)
	EnabledBadges(ctx context.Context) ([]models.Badge, error)
}

// UploadStore resolves host uploads.
type UploadStore interface {
	FindUpload(ctx context.Context, uploadID uint) (*models.Upload, error)
}

// HostDirectory reads the host tables directly from the shared database.
type HostDirectory struct {
	db *gorm.DB
}

// NewHostDirectory creates a HostDirectory.
func NewHostDirectory(db *gorm.DB) *HostDirectory {
	return &HostDirectory{db: db}
}

// FindUser returns ErrNotFound when the user does not exist.
func (h *HostDirectory) FindUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return &user, nil
}

// FindBadge returns ErrNotFound when the badge does not exist.
func (h *HostDirectory) FindBadge(ctx context.Context, badgeID uint) (*models.Badge, error) {
	var badge models.Badge
	if err := h.db.WithContext(ctx).First(&badge, badgeID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load badge %d: %w", badgeID, err)
	}
	return &badge, nil
}

func (h *HostDirectory) HasBadge(ctx context.Context, userID, badgeID uint) (bool, error) {
	var count int64
	err := h.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check user badge: %w", err)
	}
	return count > 0, nil
}

// EarnedBadges lists each badge the user holds once, ordered by badge id.
func (h *HostDirectory) EarnedBadges(ctx context.Context, userID uint) ([]models.Badge, error) {
	var badges []models.Badge
	err := h.db.WithContext(ctx).
		Where("id IN (?)", h.db.Model(&models.UserBadge{}).Select("badge_id").Where("user_id = ?", userID)).
		Order("id ASC").
		Find(&badges).Error
	if err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}
	return badges, nil
}

func (h *HostDirectory) EnabledBadges(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	if err := h.db.WithContext(ctx).Where("enabled = ?", true).Order("id ASC").Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("list enabled badges: %w", err)
	}
	return badges, nil
}

// FindUpload returns ErrNotFound when the upload does not exist.
func (h *HostDirectory) FindUpload(ctx context.Context, uploadID uint) (*models.Upload, error) {
	var upload models.Upload
	if err := h.db.WithContext(ctx).First(&upload, uploadID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load upload %d: %w", uploadID, err)
	}
	return &upload, nil
}
