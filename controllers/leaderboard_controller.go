package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/solquestio/solquest-api/config"
	"github.com/solquestio/solquest-api/models"
	"github.com/solquestio/solquest-api/rewards"
	"github.com/solquestio/solquest-api/solana"
	"github.com/solquestio/solquest-api/utils"
)

// LeaderboardController serves XP standings and prices the monthly SOL
// payouts for the top ranks.
type LeaderboardController struct {
	db      *gorm.DB
	checker solana.OwnershipChecker
}

// NewLeaderboardController creates a controller with an injected ownership
// checker; no package-level SDK state.
func NewLeaderboardController(db *gorm.DB, checker solana.OwnershipChecker) *LeaderboardController {
	return &LeaderboardController{db: db, checker: checker}
}

// LeaderboardEntry is one public row of the XP standings.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	Wallet        string `json:"wallet"`
	Username      string `json:"username"`
	XP            int    `json:"xp"`
	CurrentStreak int    `json:"current_streak"`
}

// Get returns the top users by XP, cached in Redis.
func (l *LeaderboardController) Get(ctx *gin.Context) {
	cfg := config.Get()
	limit := cfg.LeaderboardSize
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > cfg.LeaderboardSize {
			utils.Error(ctx, http.StatusBadRequest, 40050, "invalid limit")
			return
		}
		limit = n
	}

	cacheKey := fmt.Sprintf("leaderboard:top:%d", limit)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		var entries []LeaderboardEntry
		if err := json.Unmarshal(b, &entries); err == nil {
			utils.Success(ctx, gin.H{"entries": entries})
			return
		}
	}

	entries, err := l.topEntries(limit)
	if err != nil {
		utils.Sugar.Errorf("leaderboard query failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load leaderboard")
		return
	}

	utils.CacheSetJSON(cacheKey, entries, time.Duration(cfg.LeaderboardCacheTTLSec)*time.Second)
	utils.Success(ctx, gin.H{"entries": entries})
}

// MonthlyRewards prices SOL payouts for the current top 10 (admin only).
// NFT ownership lookups fail open: a failed check means no bonus, never a
// failed report.
func (l *LeaderboardController) MonthlyRewards(ctx *gin.Context) {
	cfg := config.Get()

	top, err := l.topEntries(rewards.RewardedRanks)
	if err != nil {
		utils.Sugar.Errorf("reward standings query failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load standings")
		return
	}

	entries := make([]rewards.Entry, 0, len(top))
	for _, e := range top {
		hasNft := false
		if cfg.OGCollectionMint != "" {
			checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
			owns, err := l.checker.CheckNftOwnership(checkCtx, e.Wallet, cfg.OGCollectionMint)
			cancel()
			if err != nil {
				utils.Sugar.Warnf("nft ownership check failed for %s, assuming no bonus: %v", e.Wallet, err)
			} else {
				hasNft = owns
			}
		}
		entries = append(entries, rewards.Entry{
			Rank:             e.Rank,
			Wallet:           e.Wallet,
			HasQualifyingNft: hasNft,
		})
	}

	results, summary := rewards.ProcessRanked(entries)
	utils.Success(ctx, gin.H{
		"results": results,
		"summary": summary,
	})
}

func (l *LeaderboardController) topEntries(limit int) ([]LeaderboardEntry, error) {
	var users []models.User
	err := l.db.Order("xp DESC, id ASC").Limit(limit).Find(&users).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:          i + 1,
			Wallet:        u.Wallet,
			Username:      u.Username,
			XP:            u.XP,
			CurrentStreak: u.CurrentStreak,
		}
	}
	return entries, nil
}
