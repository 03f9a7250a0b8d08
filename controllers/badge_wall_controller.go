package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/bbsplus/config"
	"github.com/cppla/bbsplus/models"
	"github.com/cppla/bbsplus/services"
	"github.com/cppla/bbsplus/utils"
)

// BadgeWallController serves a user's curated badge wall.
type BadgeWallController struct {
	walls *services.BadgeWallService
	users services.UserDirectory
}

// NewBadgeWallController creates a new BadgeWallController instance.
func NewBadgeWallController(walls *services.BadgeWallService, users services.UserDirectory) *BadgeWallController {
	return &BadgeWallController{walls: walls, users: users}
}

func emptyBadgeWall() *services.BadgeWall {
	return &services.BadgeWall{
		Collections:  []models.BadgeCollectionEntry{},
		EarnedBadges: []services.BadgeView{},
		AllBadges:    []services.BadgeView{},
	}
}

// Index returns the full wall of the caller, or of ?user_id= when given.
func (b *BadgeWallController) Index(ctx *gin.Context) {
	var targetID uint
	if raw := ctx.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			invalidParams(ctx)
			return
		}
		if _, err := b.users.FindUser(ctx.Request.Context(), uint(id)); err != nil {
			if services.KindOf(err) != services.KindNotFound {
				respondError(ctx, err, "load badge wall owner")
				return
			}
			utils.Success(ctx, emptyBadgeWall())
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

	wall, err := b.walls.Wall(ctx.Request.Context(), targetID)
	if err != nil {
		respondError(ctx, err, "load badge wall")
		return
	}
	utils.Success(ctx, wall)
}

// Show returns the displayed badges of a user. Private walls are only visible to their owner.
func (b *BadgeWallController) Show(ctx *gin.Context) {
	userID, ok := parseUintParam(ctx, "user_id")
	if !ok {
		return
	}
	viewer, _ := getUserID(ctx)
	if !config.Get().BadgeWallPublic && viewer != userID {
		respondError(ctx, services.ErrNotFound, "show badge wall")
		return
	}

	key := utils.BadgeWallCacheKey(userID)
	var cached services.PublicBadgeWall
	if utils.CacheGetJSON(ctx.Request.Context(), key, &cached) {
		utils.Success(ctx, &cached)
		return
	}
	wall, err := b.walls.PublicWall(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err, "show badge wall")
		return
	}
	if wall.User != nil {
		utils.CacheSetJSON(ctx.Request.Context(), key, wall, 0)
	}
	utils.Success(ctx, wall)
}

// Collect puts an earned badge on the caller's wall.
func (b *BadgeWallController) Collect(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	badgeID, ok := parseUintParam(ctx, "badge_id")
	if !ok {
		return
	}
	entry, err := b.walls.Collect(ctx.Request.Context(), userID, badgeID)
	if err != nil {
		respondError(ctx, err, "collect badge")
		return
	}
	utils.CacheDelete(ctx.Request.Context(), utils.BadgeWallCacheKey(userID))
	utils.SuccessMessage(ctx, "badge.collected", entry)
}

// Uncollect takes a badge off the caller's wall.
func (b *BadgeWallController) Uncollect(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	badgeID, ok := parseUintParam(ctx, "badge_id")
	if !ok {
		return
	}
	if err := b.walls.Uncollect(ctx.Request.Context(), userID, badgeID); err != nil {
		respondError(ctx, err, "uncollect badge")
		return
	}
	utils.CacheDelete(ctx.Request.Context(), utils.BadgeWallCacheKey(userID))
	utils.SuccessMessage(ctx, "badge.uncollected", nil)
}

// SetDisplay shows or hides a collected badge.
func (b *BadgeWallController) SetDisplay(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	badgeID, ok := parseUintParam(ctx, "badge_id")
	if !ok {
		return
	}
	var req struct {
		Displayed *bool `json:"displayed"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Displayed == nil {
		invalidParams(ctx)
		return
	}
	entry, err := b.walls.SetDisplayed(ctx.Request.Context(), userID, badgeID, *req.Displayed)
	if err != nil {
		respondError(ctx, err, "update badge display")
		return
	}
	utils.CacheDelete(ctx.Request.Context(), utils.BadgeWallCacheKey(userID))
	utils.Success(ctx, entry)
}

// Reorder moves a collected badge on the caller's wall.
func (b *BadgeWallController) Reorder(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	badgeID, ok := parseUintParam(ctx, "badge_id")
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
	entry, err := b.walls.Reorder(ctx.Request.Context(), userID, badgeID, *req.Position)
	if err != nil {
		respondError(ctx, err, "reorder badge collection")
		return
	}
	utils.CacheDelete(ctx.Request.Context(), utils.BadgeWallCacheKey(userID))
	utils.Success(ctx, entry)
}
