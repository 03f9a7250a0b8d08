package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/bbsplus/models"
)

const maxTodoTitleLength = 255

// TodoInput carries the fields of a new item. Enums are already parsed.
type TodoInput struct {
	Title       string
	Description string
	ImageURL    string
	ListType    models.ListType
	Priority    models.Priority
	DueDate     *time.Time
}

// TodoPatch changes only the non-nil fields.
type TodoPatch struct {
	Title       *string
	Description *string
	ImageURL    *string
	ListType    *models.ListType
	Priority    *models.Priority
	DueDate     *time.Time
	ClearDue    bool
}

// TodoStats counts a list's items.
type TodoStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// TodoService manages per-user to-do and wish lists.
type TodoService struct {
	db       *gorm.DB
	maxItems int
}

// NewTodoService creates a TodoService. maxItems caps a user's items across both lists.
func NewTodoService(db *gorm.DB, maxItems int) *TodoService {
	return &TodoService{db: db, maxItems: maxItems}
}

func todoPartition(userID uint, listType models.ListType) partition {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND list_type = ?", userID, listType)
	}
}

func validateTitle(title string) []string {
	var fields []string
	if strings.TrimSpace(title) == "" {
		fields = append(fields, "todo.title_blank")
	}
	if utf8.RuneCountInString(title) > maxTodoTitleLength {
		fields = append(fields, "todo.title_too_long")
	}
	return fields
}

// List returns a user's items of one list ordered by position, with stats.
func (s *TodoService) List(ctx context.Context, userID uint, listType models.ListType) ([]models.TodoItem, TodoStats, error) {
	var items []models.TodoItem
	err := s.db.WithContext(ctx).
		Scopes(todoPartition(userID, listType)).
		Order("position ASC").
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, TodoStats{}, fmt.Errorf("list todos: %w", err)
	}

	stats := TodoStats{Total: len(items)}
	for _, it := range items {
		if it.Completed {
			stats.Completed++
		}
	}
	stats.Pending = stats.Total - stats.Completed
	return items, stats, nil
}

// PendingCount counts the user's unfinished items across both lists.
func (s *TodoService) PendingCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.TodoItem{}).
		Where("user_id = ? AND completed = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count pending todos: %w", err)
	}
	return count, nil
}

// Create appends an item to the end of its list.
func (s *TodoService) Create(ctx context.Context, userID uint, in TodoInput) (*models.TodoItem, error) {
	if fields := validateTitle(in.Title); len(fields) > 0 {
		return nil, NewValidationError(fields...)
	}
	if in.ListType == "" {
		in.ListType = models.ListTodo
	}

	item := models.TodoItem{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ImageURL:    in.ImageURL,
		ListType:    in.ListType,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := todoPartition(userID, in.ListType)
		if err := lockPartition(tx, &models.TodoItem{}, scope); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.TodoItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if s.maxItems > 0 && count >= int64(s.maxItems) {
			return ErrMaxReached
		}

		pos, err := nextPosition(tx, &models.TodoItem{}, scope)
		if err != nil {
			return err
		}
		item.Position = pos
		return tx.Create(&item).Error
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return nil, err
		}
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return &item, nil
}

// find loads an item owned by userID; other users' items are ErrNotFound.
func (s *TodoService) find(tx *gorm.DB, userID, id uint, lock bool) (*models.TodoItem, error) {
	q := tx.Where("id = ? AND user_id = ?", id, userID)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var item models.TodoItem
	if err := q.First(&item).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Get returns one of the user's items.
func (s *TodoService) Get(ctx context.Context, userID, id uint) (*models.TodoItem, error) {
	item, err := s.find(s.db.WithContext(ctx), userID, id, false)
	if err != nil && KindOf(err) == KindInternal {
		return nil, fmt.Errorf("load todo: %w", err)
	}
	return item, err
}

// Update applies patch. Moving an item to the other list appends it there and
// closes the gap it leaves behind.
func (s *TodoService) Update(ctx context.Context, userID, id uint, patch TodoPatch) (*models.TodoItem, error) {
	if patch.Title != nil {
		if fields := validateTitle(*patch.Title); len(fields) > 0 {
			return nil, NewValidationError(fields...)
		}
	}

	var item *models.TodoItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.find(tx, userID, id, true)
		if err != nil {
			return err
		}
		item = current

		if patch.ListType != nil && *patch.ListType != item.ListType {
			from := todoPartition(userID, item.ListType)
			to := todoPartition(userID, *patch.ListType)
			if err := lockPartition(tx, &models.TodoItem{}, from); err != nil {
				return err
			}
			if err := lockPartition(tx, &models.TodoItem{}, to); err != nil {
				return err
			}
			if err := closeGap(tx, &models.TodoItem{}, from, item.Position); err != nil {
				return err
			}
			pos, err := nextPosition(tx, &models.TodoItem{}, to)
			if err != nil {
				return err
			}
			item.ListType = *patch.ListType
			item.Position = pos
		}
		if patch.Title != nil {
			item.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.ImageURL != nil {
			item.ImageURL = *patch.ImageURL
		}
		if patch.Priority != nil {
			item.Priority = *patch.Priority
		}
		if patch.DueDate != nil {
			item.DueDate = patch.DueDate
		}
		if patch.ClearDue {
			item.DueDate = nil
		}
		return tx.Save(item).Error
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return nil, err
		}
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return item, nil
}

// Delete removes an item and keeps the remaining positions dense.
func (s *TodoService) Delete(ctx context.Context, userID, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.find(tx, userID, id, false)
		if err != nil {
			return err
		}
		scope := todoPartition(userID, item.ListType)
		if err := lockPartition(tx, &models.TodoItem{}, scope); err != nil {
			return err
		}
		if err := tx.Delete(&models.TodoItem{}, item.ID).Error; err != nil {
			return err
		}
		return closeGap(tx, &models.TodoItem{}, scope, item.Position)
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return err
		}
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

// Toggle flips the completed flag without touching the position.
func (s *TodoService) Toggle(ctx context.Context, userID, id uint) (*models.TodoItem, error) {
	var item *models.TodoItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.find(tx, userID, id, true)
		if err != nil {
			return err
		}
		current.Completed = !current.Completed
		item = current
		return tx.Model(current).Update("completed", current.Completed).Error
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return nil, err
		}
		return nil, fmt.Errorf("toggle todo: %w", err)
	}
	return item, nil
}

// Reorder moves an item to newPosition within its list, clamped to the list bounds.
func (s *TodoService) Reorder(ctx context.Context, userID, id uint, newPosition int) (*models.TodoItem, error) {
	var item *models.TodoItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.find(tx, userID, id, false)
		if err != nil {
			return err
		}
		scope := todoPartition(userID, current.ListType)
		if err := lockPartition(tx, &models.TodoItem{}, scope); err != nil {
			return err
		}
		// re-read under the partition lock so a concurrent reorder cannot hand us a stale position
		current, err = s.find(tx, userID, id, false)
		if err != nil {
			return err
		}
		item = current

		var size int64
		if err := scope(tx.Model(&models.TodoItem{})).Count(&size).Error; err != nil {
			return err
		}
		target := clampPosition(newPosition, int(size))
		if target == current.Position {
			return nil
		}
		if err := shiftForMove(tx, &models.TodoItem{}, scope, current.Position, target); err != nil {
			return err
		}
		current.Position = target
		return tx.Model(current).UpdateColumn("position", target).Error
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return nil, err
		}
		return nil, fmt.Errorf("reorder todo: %w", err)
	}
	return item, nil
}
