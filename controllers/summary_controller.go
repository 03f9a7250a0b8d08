package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/bbsplus/config"
	"github.com/cppla/bbsplus/services"
	"github.com/cppla/bbsplus/utils"
)

// SummaryController exposes the per-user block the host adds to its current-user payload.
type SummaryController struct {
	checkins *services.CheckinService
	todos    *services.TodoService
	walls    *services.BadgeWallService
}

// NewSummaryController creates a new SummaryController instance.
func NewSummaryController(checkins *services.CheckinService, todos *services.TodoService, walls *services.BadgeWallService) *SummaryController {
	return &SummaryController{checkins: checkins, todos: todos, walls: walls}
}

// Show returns the caller's summary, leaving out modules that are switched off.
func (s *SummaryController) Show(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	cfg := config.Get()
	var src services.SummarySources
	if cfg.FeatureEnabled(config.FeatureCheckin) {
		src.Checkin = s.checkins
	}
	if cfg.FeatureEnabled(config.FeatureTodo) {
		src.Todo = s.todos
	}
	if cfg.FeatureEnabled(config.FeatureBadgeWall) {
		src.BadgeWall = s.walls
	}
	summary, err := services.BuildUserSummary(ctx.Request.Context(), src, userID)
	if err != nil {
		respondError(ctx, err, "build user summary")
		return
	}
	utils.Success(ctx, summary)
}
