package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/bbsplus/services"
	"github.com/cppla/bbsplus/utils"
)

// CheckinController handles daily check-in and lottery endpoints.
type CheckinController struct {
	checkins *services.CheckinService
}

// NewCheckinController creates a new controller instance.
func NewCheckinController(checkins *services.CheckinService) *CheckinController {
	return &CheckinController{checkins: checkins}
}

// Show returns today's state, the current streak and this month's stats.
func (c *CheckinController) Show(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	status, err := c.checkins.Status(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err, "load check-in status")
		return
	}
	utils.Success(ctx, status)
}

// Create records today's check-in.
func (c *CheckinController) Create(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	record, err := c.checkins.CheckIn(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err, "check in")
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, utils.T(ctx, "checkin.success", record.PointsEarned), gin.H{
		"checkin":          record,
		"consecutive_days": record.ConsecutiveDays,
	})
}

// History pages through past check-ins, 30 per page, newest first.
func (c *CheckinController) History(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	records, hasMore, err := c.checkins.History(ctx.Request.Context(), userID, parsePage(ctx.Query("page")))
	if err != nil {
		respondError(ctx, err, "load check-in history")
		return
	}
	utils.Success(ctx, gin.H{
		"checkins": records,
		"has_more": hasMore,
	})
}

// Lottery reports what the user may draw today.
func (c *CheckinController) Lottery(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	status, err := c.checkins.LotteryStatus(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err, "load lottery status")
		return
	}
	utils.Success(ctx, status)
}

// Draw runs the free daily draw.
func (c *CheckinController) Draw(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	prize, err := c.checkins.DrawLottery(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err, "lottery draw")
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, utils.T(ctx, "lottery.won", prize), gin.H{"prize": prize})
}

// ExtraDraw buys one more draw with points.
func (c *CheckinController) ExtraDraw(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	result, err := c.checkins.DrawExtraLottery(ctx.Request.Context(), userID, c.checkins.Options().ExtraLotteryCost)
	if err != nil {
		respondError(ctx, err, "extra lottery draw")
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, utils.T(ctx, "lottery.won", result.Prize), result)
}
