package models

import (
	"fmt"
	"strings"
	"time"
)

// ListType selects which of a user's lists an item belongs to.
type ListType string

const (
	ListTodo ListType = "todo"
	ListWish ListType = "wish"
)

// ParseListType accepts exactly "todo" or "wish". An empty string means "todo".
func ParseListType(s string) (ListType, error) {
	switch ListType(strings.TrimSpace(s)) {
	case "", ListTodo:
		return ListTodo, nil
	case ListWish:
		return ListWish, nil
	}
	return "", fmt.Errorf("invalid list type %q", s)
}

// Priority of a to-do item: 0 normal, 1 important, 2 urgent.
type Priority int

const (
	PriorityNormal    Priority = 0
	PriorityImportant Priority = 1
	PriorityUrgent    Priority = 2
)

// ParsePriority rejects anything outside 0..2.
func ParsePriority(v int) (Priority, error) {
	switch p := Priority(v); p {
	case PriorityNormal, PriorityImportant, PriorityUrgent:
		return p, nil
	}
	return 0, fmt.Errorf("invalid priority %d", v)
}

// TodoItem is one entry of a user's to-do or wish list.
type TodoItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;index:idx_todo_partition,priority:1;index:idx_todo_user_completed,priority:1;not null" json:"user_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	ImageURL    string     `gorm:"size:1024" json:"image_url"`
	Completed   bool       `gorm:"not null;default:false;index:idx_todo_user_completed,priority:2" json:"completed"`
	Position    int        `gorm:"not null;default:0" json:"position"`
	ListType    ListType   `gorm:"size:16;not null;default:'todo';index:idx_todo_partition,priority:2" json:"list_type"`
	DueDate     *time.Time `json:"due_date"`
	Priority    Priority   `gorm:"not null;default:0" json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (TodoItem) TableName() string { return "user_todos" }
