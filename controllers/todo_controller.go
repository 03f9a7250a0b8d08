package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/bbsplus/models"
	"github.com/cppla/bbsplus/services"
	"github.com/cppla/bbsplus/utils"
)

// TodoController serves the to-do and wish list endpoints.
type TodoController struct {
	todos *services.TodoService
	users services.UserDirectory
}

// NewTodoController creates a new TodoController instance.
func NewTodoController(todos *services.TodoService, users services.UserDirectory) *TodoController {
	return &TodoController{todos: todos, users: users}
}

type todoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	ListType    *string `json:"list_type"`
	Priority    *int    `json:"priority"`
	DueDate     *string `json:"due_date"`
}

func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(models.DayLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// toPatch validates the enum fields and sanitises text. Rejected fields come back as message keys.
func (r todoRequest) toPatch() (services.TodoPatch, []string) {
	var patch services.TodoPatch
	var invalid []string
	if r.Title != nil {
		title := utils.Sanitize(strings.TrimSpace(*r.Title))
		patch.Title = &title
	}
	if r.Description != nil {
		desc := utils.Sanitize(*r.Description)
		patch.Description = &desc
	}
	if r.ImageURL != nil {
		url := strings.TrimSpace(*r.ImageURL)
		patch.ImageURL = &url
	}
	if r.ListType != nil {
		lt, err := models.ParseListType(*r.ListType)
		if err != nil {
			invalid = append(invalid, "todo.invalid_list")
		} else {
			patch.ListType = &lt
		}
	}
	if r.Priority != nil {
		p, err := models.ParsePriority(*r.Priority)
		if err != nil {
			invalid = append(invalid, "todo.invalid_prio")
		} else {
			patch.Priority = &p
		}
	}
	if r.DueDate != nil {
		if strings.TrimSpace(*r.DueDate) == "" {
			patch.ClearDue = true
		} else if due, err := parseDueDate(*r.DueDate); err != nil {
			invalid = append(invalid, "todo.invalid_due")
		} else {
			patch.DueDate = due
		}
	}
	return patch, invalid
}

// Index lists one list of the caller, or of ?user_id= when given. Unknown users get an empty list.
func (t *TodoController) Index(ctx *gin.Context) {
	listType, err := models.ParseListType(ctx.Query("type"))
	if err != nil {
		validationFailed(ctx, "todo.invalid_list")
		return
	}

	var targetID uint
	if raw := ctx.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			invalidParams(ctx)
			return
		}
		if _, err := t.users.FindUser(ctx.Request.Context(), uint(id)); err != nil {
			if services.KindOf(err) != services.KindNotFound {
				respondError(ctx, err, "load todo owner")
				return
			}
			utils.Success(ctx, gin.H{"todos": []models.TodoItem{}, "stats": services.TodoStats{}})
			return
		}
		targetID = uint(id)
	} else {
		id, ok := requireUser(ctx)
		if !ok {
			return
		}
		targetID = id
	}

	items, stats, err := t.todos.List(ctx.Request.Context(), targetID, listType)
	if err != nil {
		respondError(ctx, err, "list todos")
		return
	}
	if items == nil {
		items = []models.TodoItem{}
	}
	utils.Success(ctx, gin.H{"todos": items, "stats": stats})
}

// Create appends a new item to the caller's list.
func (t *TodoController) Create(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req todoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidParams(ctx)
		return
	}
	patch, invalid := req.toPatch()
	if len(invalid) > 0 {
		validationFailed(ctx, invalid...)
		return
	}

	in := services.TodoInput{ListType: models.ListTodo, DueDate: patch.DueDate}
	if patch.Title != nil {
		in.Title = *patch.Title
	}
	if patch.Description != nil {
		in.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		in.ImageURL = *patch.ImageURL
	}
	if patch.ListType != nil {
		in.ListType = *patch.ListType
	}
	if patch.Priority != nil {
		in.Priority = *patch.Priority
	}

	item, err := t.todos.Create(ctx.Request.Context(), userID, in)
	if err != nil {
		respondError(ctx, err, "create todo")
		return
	}
	utils.SuccessMessage(ctx, "todo.created", item)
}

// Update edits the caller's item.
func (t *TodoController) Update(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	var req todoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidParams(ctx)
		return
	}
	patch, invalid := req.toPatch()
	if len(invalid) > 0 {
		validationFailed(ctx, invalid...)
		return
	}

	item, err := t.todos.Update(ctx.Request.Context(), userID, id, patch)
	if err != nil {
		respondError(ctx, err, "update todo")
		return
	}
	utils.SuccessMessage(ctx, "todo.updated", item)
}

// Delete removes the caller's item.
func (t *TodoController) Delete(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	if err := t.todos.Delete(ctx.Request.Context(), userID, id); err != nil {
		respondError(ctx, err, "delete todo")
		return
	}
	utils.SuccessMessage(ctx, "todo.deleted", nil)
}

// Toggle flips the completed flag.
func (t *TodoController) Toggle(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	item, err := t.todos.Toggle(ctx.Request.Context(), userID, id)
	if err != nil {
		respondError(ctx, err, "toggle todo")
		return
	}
	utils.Success(ctx, item)
}

// Reorder moves the item to the requested position.
func (t *TodoController) Reorder(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Position *int `json:"position"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Position == nil {
		invalidParams(ctx)
		return
	}
	item, err := t.todos.Reorder(ctx.Request.Context(), userID, id, *req.Position)
	if err != nil {
		respondError(ctx, err, "reorder todo")
		return
	}
	utils.Success(ctx, item)
}
