package services

import "context"

// UserSummary is the per-user block the host embeds in its current-user payload.
// Fields of disabled modules are omitted.
type UserSummary struct {
	CheckedInToday       *bool  `json:"checked_in_today,omitempty"`
	ConsecutiveDays      *int   `json:"consecutive_days,omitempty"`
	TodoCount            *int64 `json:"todo_count,omitempty"`
	BadgeCollectionCount *int64 `json:"badge_collection_count,omitempty"`
}

// SummarySources holds the modules a summary reads from. A nil module is treated as disabled.
type SummarySources struct {
	Checkin   *CheckinService
	Todo      *TodoService
	BadgeWall *BadgeWallService
}

// BuildUserSummary collects the summary fields for userID.
func BuildUserSummary(ctx context.Context, src SummarySources, userID uint) (*UserSummary, error) {
	sum := &UserSummary{}
	if src.Checkin != nil {
		checked, err := src.Checkin.CheckedInToday(ctx, userID)
		if err != nil {
			return nil, err
		}
		streak, err := src.Checkin.ConsecutiveDays(ctx, userID)
		if err != nil {
			return nil, err
		}
		sum.CheckedInToday = &checked
		sum.ConsecutiveDays = &streak
	}
	if src.Todo != nil {
		n, err := src.Todo.PendingCount(ctx, userID)
		if err != nil {
			return nil, err
		}
		sum.TodoCount = &n
	}
	if src.BadgeWall != nil {
		n, err := src.BadgeWall.Count(ctx, userID)
		if err != nil {
			return nil, err
		}
		sum.BadgeCollectionCount = &n
	}
	return sum, nil
}
