package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/bbsplus/config"
	"github.com/cppla/bbsplus/controllers"
	"github.com/cppla/bbsplus/middleware"
	"github.com/cppla/bbsplus/services"
	"github.com/cppla/bbsplus/utils"
)

func checkinOptions(cfg config.AppConfig) services.CheckinOptions {
	return services.CheckinOptions{
		BasePoints:       cfg.CheckinBasePoints,
		ConsecutiveBonus: cfg.CheckinConsecutiveBonus,
		LotteryEnabled:   cfg.CheckinLotteryEnabled,
		Prizes:           services.ParsePrizeTable(cfg.CheckinLotteryPrizes, cfg.CheckinLotteryProbabilities),
		ExtraLotteryCost: cfg.CheckinExtraLotteryCost,
		MaxExtraPerDay:   cfg.CheckinMaxExtraLotteryPerDay,
		Location:         cfg.Location(),
	}
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	gl := utils.NewRollingFileLogger(cfg, cfg.GinPath)
	r.Use(middleware.RequestID())
	r.Use(utils.Ginzap(gl))
	r.Use(utils.RecoveryWithZap(gl))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept-Language", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	host := services.NewHostDirectory(db)
	checkinService := services.NewCheckinService(db, checkinOptions(cfg))
	todoService := services.NewTodoService(db, cfg.TodoMaxItems)
	wallService := services.NewBadgeWallService(db, host, host)
	emojiService := services.NewEmojiService(db, host, host, services.EmojiLimits{
		MaxPerUser: cfg.CustomEmojiMaxPerUser,
		MaxSizeKB:  cfg.CustomEmojiMaxSizeKB,
	})

	checkinController := controllers.NewCheckinController(checkinService)
	todoController := controllers.NewTodoController(todoService, host)
	wallController := controllers.NewBadgeWallController(wallService, host)
	emojiController := controllers.NewCustomEmojiController(emojiService)
	summaryController := controllers.NewSummaryController(checkinService, todoService, wallService)
	statsController := controllers.NewStatsController(db)
	configController := controllers.NewConfigController()

	api := r.Group(cfg.MountPath)
	auth := middleware.AuthRequired()
	optional := middleware.AuthOptional()
	limit := middleware.RateLimit(cfg.RateLimitPerMinute)

	api.GET("/settings", configController.GetSettings)
	api.GET("/stats", statsController.GetStats)
	api.GET("/summary", auth, summaryController.Show)

	checkin := api.Group("/checkin", middleware.RequireFeature(config.FeatureCheckin), auth)
	checkin.GET("", checkinController.Show)
	checkin.POST("", limit, checkinController.Create)
	checkin.GET("/history", checkinController.History)
	checkin.GET("/lottery", checkinController.Lottery)
	checkin.POST("/draw", limit, checkinController.Draw)
	checkin.POST("/extra_draw", limit, checkinController.ExtraDraw)

	todos := api.Group("/todos", middleware.RequireFeature(config.FeatureTodo))
	todos.GET("", optional, todoController.Index)
	todos.POST("", auth, limit, todoController.Create)
	todos.PUT("/:id", auth, limit, todoController.Update)
	todos.DELETE("/:id", auth, limit, todoController.Delete)
	todos.PUT("/:id/toggle", auth, limit, todoController.Toggle)
	todos.PUT("/:id/reorder", auth, limit, todoController.Reorder)

	wall := api.Group("/badge-wall", middleware.RequireFeature(config.FeatureBadgeWall))
	wall.GET("", optional, wallController.Index)
	wall.GET("/:user_id", optional, wallController.Show)
	wall.POST("/collect/:badge_id", auth, limit, wallController.Collect)
	wall.POST("/uncollect/:badge_id", auth, limit, wallController.Uncollect)
	wall.PUT("/collections/:badge_id/display", auth, limit, wallController.SetDisplay)
	wall.PUT("/collections/:badge_id/reorder", auth, limit, wallController.Reorder)

	emoji := api.Group("/custom-emoji", middleware.RequireFeature(config.FeatureCustomEmoji), auth)
	emoji.GET("", emojiController.Index)
	emoji.POST("", limit, emojiController.Create)
	emoji.DELETE("/:id", limit, emojiController.Delete)
	emoji.POST("/:id/use", emojiController.Use)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, http.StatusNotFound, utils.T(ctx, "common.not_found"))
	})

	return r
}
