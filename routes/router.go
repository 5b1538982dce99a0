package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/solquestio/solquest-api/config"
	"github.com/solquestio/solquest-api/controllers"
	"github.com/solquestio/solquest-api/middleware"
	"github.com/solquestio/solquest-api/solana"
	"github.com/solquestio/solquest-api/utils"
)

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
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	nftChecker := solana.NewRPCClient(cfg.SolanaRPCURL)

	authController := controllers.NewAuthController(db)
	checkinController := controllers.NewCheckInController(db)
	codeController := controllers.NewCodeController(db)
	questController := controllers.NewQuestController(db)
	leaderboardController := controllers.NewLeaderboardController(db, nftChecker)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/nonce", authController.RequestNonce)
	authGroup.POST("/wallet", authController.WalletLogin)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public endpoints
	api.GET("/quests", questController.List)
	api.GET("/quests/:id", questController.Get)
	api.GET("/leaderboard", leaderboardController.Get)
	api.GET("/stats", statsController.GetStats)
	api.GET("/users/:wallet", authController.GetUserPublic)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.GET("/checkin/status", checkinController.Status)
	protected.POST("/checkin/daily", checkinController.Daily)
	protected.POST("/codes/redeem", codeController.Redeem)
	protected.POST("/quests/:id/complete", questController.Complete)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	admin.POST("/codes/generate", codeController.Generate)
	admin.GET("/codes/stats", codeController.Stats)
	admin.GET("/codes/unused", codeController.Unused)
	admin.POST("/quests", questController.Create)
	admin.PUT("/quests/:id", questController.Update)
	admin.GET("/leaderboard/rewards", leaderboardController.MonthlyRewards)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
