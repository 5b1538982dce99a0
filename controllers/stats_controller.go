package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/solquestio/solquest-api/codes"
	"github.com/solquestio/solquest-api/models"
	"github.com/solquestio/solquest-api/utils"
)

const statsCacheKey = "stats:global"
const statsCacheTTL = time.Minute

// StatsController serves aggregate platform counters.
type StatsController struct {
	db     *gorm.DB
	ledger *codes.Ledger
}

// NewStatsController creates a new controller instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db, ledger: codes.NewLedger(codes.NewGormStore(db))}
}

type globalStats struct {
	Users          int64       `json:"users"`
	Quests         int64       `json:"quests"`
	Completions    int64       `json:"completions"`
	CheckinsToday  int64       `json:"checkins_today"`
	Codes          codes.Stats `json:"codes"`
	GeneratedAtUTC time.Time   `json:"generated_at_utc"`
}

// GetStats returns global platform counters, cached for a minute.
func (s *StatsController) GetStats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(statsCacheKey); ok {
		var cached globalStats
		if err := json.Unmarshal(b, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	var stats globalStats
	var err error

	if err = s.db.Model(&models.User{}).Count(&stats.Users).Error; err == nil {
		err = s.db.Model(&models.Quest{}).Where("active = ?", true).Count(&stats.Quests).Error
	}
	if err == nil {
		err = s.db.Model(&models.QuestCompletion{}).Count(&stats.Completions).Error
	}
	if err == nil {
		todayStart := time.Now().UTC().Truncate(24 * time.Hour)
		err = s.db.Model(&models.CheckIn{}).Where("checkin_date >= ?", todayStart).Count(&stats.CheckinsToday).Error
	}
	if err != nil {
		utils.Sugar.Errorf("stats query failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load stats")
		return
	}

	codeStats, err := s.ledger.Stats(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Errorf("code stats failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load code stats")
		return
	}
	stats.Codes = codeStats
	stats.GeneratedAtUTC = time.Now().UTC()

	utils.CacheSetJSON(statsCacheKey, stats, statsCacheTTL)
	utils.Success(ctx, stats)
}
