package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cppla/bbsplus/models"
)

func seedTodos(t *testing.T, svc *TodoService, userID uint, listType models.ListType, n int) []*models.TodoItem {
	t.Helper()
	items := make([]*models.TodoItem, 0, n)
	for i := 0; i < n; i++ {
		item, err := svc.Create(context.Background(), userID, TodoInput{
			Title:    fmt.Sprintf("item %d", i),
			ListType: listType,
		})
		if err != nil {
			t.Fatalf("create item %d: %v", i, err)
		}
		items = append(items, item)
	}
	return items
}

// positions maps item id to position for one list.
func positions(t *testing.T, svc *TodoService, userID uint, listType models.ListType) map[uint]int {
	t.Helper()
	items, _, err := svc.List(context.Background(), userID, listType)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	out := make(map[uint]int, len(items))
	for _, it := range items {
		out[it.ID] = it.Position
	}
	return out
}

func assertDense(t *testing.T, pos map[uint]int) {
	t.Helper()
	seen := make(map[int]bool, len(pos))
	for _, p := range pos {
		if p < 0 || p >= len(pos) || seen[p] {
			t.Fatalf("positions not a dense permutation: %v", pos)
		}
		seen[p] = true
	}
}

func TestTodoCreateAppends(t *testing.T) {
	svc := NewTodoService(newTestDB(t), 100)
	items := seedTodos(t, svc, 1, models.ListTodo, 3)
	for i, it := range items {
		if it.Position != i {
			t.Fatalf("item %d position = %d", i, it.Position)
		}
	}
	wish := seedTodos(t, svc, 1, models.ListWish, 1)
	if wish[0].Position != 0 {
		t.Fatalf("wish list has its own sequence, got position %d", wish[0].Position)
	}
}

func TestTodoReorderMovesEarlier(t *testing.T) {
	svc := NewTodoService(newTestDB(t), 100)
	items := seedTodos(t, svc, 1, models.ListTodo, 5)

	moved, err := svc.Reorder(context.Background(), 1, items[3].ID, 0)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if moved.Position != 0 {
		t.Fatalf("moved position = %d", moved.Position)
	}

	pos := positions(t, svc, 1, models.ListTodo)
	want := map[uint]int{
		items[3].ID: 0,
		items[0].ID: 1,
		items[1].ID: 2,
		items[2].ID: 3,
		items[4].ID: 4,
	}
	for id, p := range want {
		if pos[id] != p {
			t.Fatalf("item %d at %d, want %d (all: %v)", id, pos[id], p, pos)
		}
	}
	assertDense(t, pos)
}

func TestTodoReorderMovesLaterAndClamps(t *testing.T) {
	svc := NewTodoService(newTestDB(t), 100)
	items := seedTodos(t, svc, 1, models.ListTodo, 4)

	if _, err := svc.Reorder(context.Background(), 1, items[0].ID, 99); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	pos := positions(t, svc, 1, models.ListTodo)
	if pos[items[0].ID] != 3 || pos[items[1].ID] != 0 || pos[items[3].ID] != 2 {
		t.Fatalf("positions = %v", pos)
	}
	assertDense(t, pos)
}

func TestTodoDeleteKeepsPositionsDense(t *testing.T) {
	svc := NewTodoService(newTestDB(t), 100)
	items := seedTodos(t, svc, 1, models.ListTodo, 4)

	if err := svc.Delete(context.Background(), 1, items[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	pos := positions(t, svc, 1, models.ListTodo)
	if len(pos) != 3 || pos[items[2].ID] != 1 || pos[items[3].ID] != 2 {
		t.Fatalf("positions = %v", pos)
	}
	assertDense(t, pos)
}

func TestTodoChangeListType(t *testing.T) {
	svc := NewTodoService(newTestDB(t), 100)
	ctx := context.Background()
	todos := seedTodos(t, svc, 1, models.ListTodo, 3)
	seedTodos(t, svc, 1, models.ListWish, 2)

	wish := models.ListWish
	moved, err := svc.Update(ctx, 1, todos[0].ID, TodoPatch{ListType: &wish})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if moved.ListType != models.ListWish || moved.Position != 2 {
		t.Fatalf("moved = %+v", moved)
	}
	assertDense(t, positions(t, svc, 1, models.ListTodo))
	assertDense(t, positions(t, svc, 1, models.ListWish))
}

func TestTodoToggleAndStats(t *testing.T) {
	svc := NewTodoService(newTestDB(t), 100)
	ctx := context.Background()
	items := seedTodos(t, svc, 1, models.ListTodo, 3)

	toggled, err := svc.Toggle(ctx, 1, items[1].ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed || toggled.Position != 1 {
		t.Fatalf("toggled = %+v", toggled)
	}

	_, stats, err := svc.List(ctx, 1, models.ListTodo)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if stats != (TodoStats{Total: 3, Completed: 1, Pending: 2}) {
		t.Fatalf("stats = %+v", stats)
	}
	pending, err := svc.PendingCount(ctx, 1)
	if err != nil || pending != 2 {
		t.Fatalf("pending = %d, %v", pending, err)
	}
}

func TestTodoValidationAndQuota(t *testing.T) {
	svc := NewTodoService(newTestDB(t), 2)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, TodoInput{Title: "   "})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("blank title: got %v, want validation error", err)
	}

	seedTodos(t, svc, 1, models.ListTodo, 1)
	seedTodos(t, svc, 1, models.ListWish, 1)
	if _, err := svc.Create(ctx, 1, TodoInput{Title: "one too many"}); !errors.Is(err, ErrMaxReached) {
		t.Fatalf("over quota: got %v, want ErrMaxReached", err)
	}
}

func TestTodoOtherUsersItemIsNotFound(t *testing.T) {
	svc := NewTodoService(newTestDB(t), 100)
	ctx := context.Background()
	items := seedTodos(t, svc, 1, models.ListTodo, 1)

	if _, err := svc.Toggle(ctx, 2, items[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle: got %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, 2, items[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Reorder(ctx, 2, items[0].ID, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("reorder: got %v, want ErrNotFound", err)
	}
}
