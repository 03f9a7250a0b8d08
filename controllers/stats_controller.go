package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/bbsplus/config"
	"github.com/cppla/bbsplus/models"
	"github.com/cppla/bbsplus/utils"
)

const statsCacheTTL = time.Minute

// PluginStats are site-wide counters for the plugin's features.
type PluginStats struct {
	CheckinsToday    int64 `json:"checkins_today"`
	CheckinsTotal    int64 `json:"checkins_total"`
	TodoCount        int64 `json:"todo_count"`
	BadgeCollections int64 `json:"badge_collections"`
	CustomEmojiCount int64 `json:"custom_emoji_count"`
	ExtraDrawsToday  int64 `json:"extra_draws_today"`
}

// StatsController provides plugin-wide statistics.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate counters. A failing count reports 0 instead of failing the endpoint.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var stats PluginStats
	if utils.CacheGetJSON(ctx.Request.Context(), utils.CacheKeyStats, &stats) {
		utils.Success(ctx, stats)
		return
	}

	db := s.db.WithContext(ctx.Request.Context())
	// day keys are strings, so equality avoids timezone/type mismatches
	today := time.Now().In(config.Get().Location()).Format(models.DayLayout)

	count := func(q *gorm.DB) int64 {
		var n int64
		if err := q.Count(&n).Error; err != nil {
			utils.Sugar.Warnf("stats count failed: %v", err)
			return 0
		}
		return n
	}
	stats.CheckinsToday = count(db.Model(&models.CheckinRecord{}).Where("checkin_date = ?", today))
	stats.CheckinsTotal = count(db.Model(&models.CheckinRecord{}))
	stats.TodoCount = count(db.Model(&models.TodoItem{}))
	stats.BadgeCollections = count(db.Model(&models.BadgeCollectionEntry{}))
	stats.CustomEmojiCount = count(db.Model(&models.CustomEmoji{}))
	stats.ExtraDrawsToday = count(db.Model(&models.ExtraLotteryRecord{}).Where("draw_date = ?", today))

	utils.CacheSetJSON(ctx.Request.Context(), utils.CacheKeyStats, stats, statsCacheTTL)
	utils.Success(ctx, stats)
}
