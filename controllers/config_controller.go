package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/bbsplus/config"
	"github.com/cppla/bbsplus/services"
	"github.com/cppla/bbsplus/utils"
)

// ConfigController serves the client-facing subset of the configuration.
type ConfigController struct{}

func NewConfigController() *ConfigController { return &ConfigController{} }

// GetSettings returns feature flags and limits so the front-end can hide what is off.
func (c *ConfigController) GetSettings(ctx *gin.Context) {
	var cached gin.H
	if utils.CacheGetJSON(ctx.Request.Context(), utils.CacheKeySettings, &cached) {
		utils.Success(ctx, cached)
		return
	}

	cfg := config.Get()
	prizes := services.ParsePrizeTable(cfg.CheckinLotteryPrizes, cfg.CheckinLotteryProbabilities)
	settings := gin.H{
		"enabled": cfg.PluginEnabled,
		"checkin": gin.H{
			"enabled":                cfg.FeatureEnabled(config.FeatureCheckin),
			"base_points":            cfg.CheckinBasePoints,
			"consecutive_bonus":      cfg.CheckinConsecutiveBonus,
			"lottery_enabled":        cfg.CheckinLotteryEnabled,
			"lottery_prizes":         prizes.Prizes,
			"extra_lottery_cost":     cfg.CheckinExtraLotteryCost,
			"max_extra_lottery_draw": cfg.CheckinMaxExtraLotteryPerDay,
		},
		"todo": gin.H{
			"enabled":   cfg.FeatureEnabled(config.FeatureTodo),
			"max_items": cfg.TodoMaxItems,
		},
		"badge_wall": gin.H{
			"enabled": cfg.FeatureEnabled(config.FeatureBadgeWall),
			"public":  cfg.BadgeWallPublic,
		},
		"custom_emoji": gin.H{
			"enabled":      cfg.FeatureEnabled(config.FeatureCustomEmoji),
			"max_per_user": cfg.CustomEmojiMaxPerUser,
			"max_size_kb":  cfg.CustomEmojiMaxSizeKB,
		},
	}
	utils.CacheSetJSON(ctx.Request.Context(), utils.CacheKeySettings, settings, 0)
	utils.Success(ctx, settings)
}
