package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Kind groups errors by how the request layer answers them.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindBusinessRule
)

// Error is a domain failure the caller can branch on via Tag.
type Error struct {
	Kind Kind
	Tag  string
	// Fields holds message keys for validation failures.
	Fields []string
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return e.Tag + ": " + strings.Join(e.Fields, ", ")
	}
	return e.Tag
}

// Is matches validation errors by tag so errors.Is(err, ErrValidation) works for any field set.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Tag == t.Tag
}

var (
	ErrNotFound = &Error{Kind: KindNotFound, Tag: "not_found"}

	ErrAlreadyCheckedIn   = &Error{Kind: KindBusinessRule, Tag: "already_checked_in"}
	ErrNoChance           = &Error{Kind: KindBusinessRule, Tag: "no_chance"}
	ErrInsufficientPoints = &Error{Kind: KindBusinessRule, Tag: "insufficient_points"}
	ErrQuotaExceeded      = &Error{Kind: KindBusinessRule, Tag: "quota_exceeded"}
	ErrAlreadyCollected   = &Error{Kind: KindBusinessRule, Tag: "already_collected"}
	ErrNotEarned          = &Error{Kind: KindBusinessRule, Tag: "not_earned"}
	ErrMaxReached         = &Error{Kind: KindBusinessRule, Tag: "max_reached"}
	ErrFileTooLarge       = &Error{Kind: KindBusinessRule, Tag: "file_too_large"}

	// ErrValidation matches any validation failure through errors.Is.
	ErrValidation = &Error{Kind: KindValidation, Tag: "validation_failed"}
)

// NewValidationError builds a validation failure carrying message keys.
func NewValidationError(fields ...string) *Error {
	return &Error{Kind: KindValidation, Tag: ErrValidation.Tag, Fields: fields}
}

// KindOf classifies err; unknown errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
