package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/bbsplus/services"
	"github.com/cppla/bbsplus/utils"
)

// CustomEmojiController serves the caller's personal emoji.
type CustomEmojiController struct {
	emojis *services.EmojiService
}

// NewCustomEmojiController creates a new CustomEmojiController instance.
func NewCustomEmojiController(emojis *services.EmojiService) *CustomEmojiController {
	return &CustomEmojiController{emojis: emojis}
}

// Index lists the caller's emoji; ?sort=popular orders by usage.
func (e *CustomEmojiController) Index(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	sort := services.EmojiSortRecent
	if ctx.Query("sort") == string(services.EmojiSortPopular) {
		sort = services.EmojiSortPopular
	}
	emojis, stats, err := e.emojis.List(ctx.Request.Context(), userID, sort)
	if err != nil {
		respondError(ctx, err, "list custom emoji")
		return
	}
	utils.Success(ctx, gin.H{"emojis": emojis, "stats": stats})
}

// Create registers an upload as a named emoji.
func (e *CustomEmojiController) Create(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req struct {
		UploadID uint   `json:"upload_id" binding:"required"`
		Name     string `json:"name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidParams(ctx)
		return
	}
	emoji, err := e.emojis.Register(ctx.Request.Context(), userID, req.UploadID, req.Name)
	if err != nil {
		respondError(ctx, err, "register custom emoji")
		return
	}
	utils.SuccessMessage(ctx, "emoji.uploaded", emoji)
}

// Delete removes one of the caller's emoji.
func (e *CustomEmojiController) Delete(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	if err := e.emojis.Remove(ctx.Request.Context(), userID, id); err != nil {
		respondError(ctx, err, "remove custom emoji")
		return
	}
	utils.SuccessMessage(ctx, "emoji.deleted", nil)
}

// Use counts one insertion of the emoji.
func (e *CustomEmojiController) Use(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	emoji, err := e.emojis.Use(ctx.Request.Context(), userID, id)
	if err != nil {
		respondError(ctx, err, "use custom emoji")
		return
	}
	utils.Success(ctx, emoji)
}
