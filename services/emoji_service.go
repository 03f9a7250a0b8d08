package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/bbsplus/models"
)

const maxEmojiNameLength = 50

// EmojiSort selects the listing order.
type EmojiSort string

const (
	EmojiSortRecent  EmojiSort = "recent"
	EmojiSortPopular EmojiSort = "popular"
)

// EmojiView is an emoji together with its derived code.
type EmojiView struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	EmojiCode  string    `json:"emoji_code"`
	UsageCount int       `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmojiStats reports usage against the quota.
type EmojiStats struct {
	Count int `json:"count"`
	Max   int `json:"max"`
}

// EmojiLimits bounds what one user may register.
type EmojiLimits struct {
	MaxPerUser int
	MaxSizeKB  int
}

// EmojiService manages per-user custom emoji.
type EmojiService struct {
	db      *gorm.DB
	uploads UploadStore
	users   UserDirectory
	limits  EmojiLimits
}

// NewEmojiService creates an EmojiService.
func NewEmojiService(db *gorm.DB, uploads UploadStore, users UserDirectory, limits EmojiLimits) *EmojiService {
	return &EmojiService{db: db, uploads: uploads, users: users, limits: limits}
}

// Limits returns the configured quota.
func (s *EmojiService) Limits() EmojiLimits { return s.limits }

// NormalizeEmojiName lowercases name, replaces every character outside [a-z0-9_]
// with an underscore, collapses underscore runs and trims them from both ends.
func NormalizeEmojiName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !ok {
			if !lastUnderscore {
				b.WriteByte('_')
			}
			lastUnderscore = true
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}
	return strings.Trim(b.String(), "_")
}

// EmojiCode is the token users type to insert the emoji.
func EmojiCode(username, name string) string {
	return ":" + username + "_" + name + ":"
}

func emojiPartition(userID uint) partition {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func (s *EmojiService) view(e models.CustomEmoji, username string) EmojiView {
	return EmojiView{
		ID:         e.ID,
		Name:       e.Name,
		URL:        e.URL,
		EmojiCode:  EmojiCode(username, e.Name),
		UsageCount: e.UsageCount,
		CreatedAt:  e.CreatedAt,
	}
}

func (s *EmojiService) username(ctx context.Context, userID uint) (string, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return "", nil
		}
		return "", err
	}
	return user.Username, nil
}

// List returns the user's emoji, newest first unless sort is popular.
func (s *EmojiService) List(ctx context.Context, userID uint, sort EmojiSort) ([]EmojiView, EmojiStats, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if sort == EmojiSortPopular {
		q = q.Order("usage_count DESC")
	}
	var emojis []models.CustomEmoji
	if err := q.Order("created_at DESC").Order("id DESC").Find(&emojis).Error; err != nil {
		return nil, EmojiStats{}, fmt.Errorf("list custom emoji: %w", err)
	}

	username, err := s.username(ctx, userID)
	if err != nil {
		return nil, EmojiStats{}, err
	}
	views := make([]EmojiView, 0, len(emojis))
	for _, e := range emojis {
		views = append(views, s.view(e, username))
	}
	return views, EmojiStats{Count: len(views), Max: s.limits.MaxPerUser}, nil
}

// Register turns one of the host's uploads into a named emoji for userID.
func (s *EmojiService) Register(ctx context.Context, userID, uploadID uint, requestedName string) (*EmojiView, error) {
	upload, err := s.uploads.FindUpload(ctx, uploadID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, NewValidationError("emoji.upload_not_found")
		}
		return nil, err
	}

	name := NormalizeEmojiName(requestedName)
	emoji := models.CustomEmoji{UserID: userID, Name: name, URL: upload.URL, UploadID: upload.ID}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := emojiPartition(userID)
		if err := lockPartition(tx, &models.CustomEmoji{}, scope); err != nil {
			return err
		}
		var count int64
		if err := scope(tx.Model(&models.CustomEmoji{})).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(s.limits.MaxPerUser) {
			return ErrMaxReached
		}
		if upload.Filesize > int64(s.limits.MaxSizeKB)*1024 {
			return ErrFileTooLarge
		}

		var fields []string
		if name == "" {
			fields = append(fields, "emoji.name_blank")
		}
		if len(name) > maxEmojiNameLength {
			fields = append(fields, "emoji.name_too_long")
		}
		if upload.URL == "" {
			fields = append(fields, "emoji.url_blank")
		}
		if len(fields) > 0 {
			return NewValidationError(fields...)
		}

		var taken int64
		if err := scope(tx.Model(&models.CustomEmoji{})).Where("name = ?", name).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return NewValidationError("emoji.name_taken")
		}
		return tx.Create(&emoji).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, NewValidationError("emoji.name_taken")
		}
		if KindOf(err) != KindInternal {
			return nil, err
		}
		return nil, fmt.Errorf("register custom emoji: %w", err)
	}

	username, err := s.username(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := s.view(emoji, username)
	return &v, nil
}

// Remove deletes one of the user's emoji. Someone else's emoji is reported as missing.
func (s *EmojiService) Remove(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.CustomEmoji{})
	if res.Error != nil {
		return fmt.Errorf("remove custom emoji: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Use bumps the usage counter of one of the user's emoji.
func (s *EmojiService) Use(ctx context.Context, userID, id uint) (*EmojiView, error) {
	db := s.db.WithContext(ctx)
	res := db.Model(&models.CustomEmoji{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return nil, fmt.Errorf("use custom emoji: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var emoji models.CustomEmoji
	if err := db.First(&emoji, id).Error; err != nil {
		return nil, fmt.Errorf("reload custom emoji: %w", err)
	}
	username, err := s.username(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := s.view(emoji, username)
	return &v, nil
}
