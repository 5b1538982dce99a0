package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/solquestio/solquest-api/codes"
	"github.com/solquestio/solquest-api/config"
	"github.com/solquestio/solquest-api/models"
	"github.com/solquestio/solquest-api/utils"
)

// maxGenerateBatch bounds a single admin generation request.
const maxGenerateBatch = 1000

// CodeController handles secret code generation and redemption.
type CodeController struct {
	db     *gorm.DB
	store  codes.Store
	ledger *codes.Ledger
}

// NewCodeController creates a controller over the gorm-backed code store.
func NewCodeController(db *gorm.DB) *CodeController {
	store := codes.NewGormStore(db)
	return &CodeController{db: db, store: store, ledger: codes.NewLedger(store)}
}

type generateRequest struct {
	Count    int    `json:"count" binding:"required"`
	Campaign string `json:"campaign" binding:"required"`
}

// Generate creates a batch of fresh codes for a campaign (admin only).
func (c *CodeController) Generate(ctx *gin.Context) {
	var req generateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "count and campaign are required")
		return
	}
	if req.Count <= 0 || req.Count > maxGenerateBatch {
		utils.Error(ctx, http.StatusBadRequest, 40021, "count must be between 1 and 1000")
		return
	}

	batch, err := c.ledger.Generate(req.Count, req.Campaign)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, err.Error())
		return
	}
	if err := c.store.Insert(ctx.Request.Context(), batch); err != nil {
		utils.Sugar.Errorf("failed to persist code batch: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to store generated codes")
		return
	}

	tokens := make([]string, len(batch))
	for i, sc := range batch {
		tokens[i] = sc.Code
	}
	utils.Success(ctx, gin.H{
		"batch_id": batch[0].BatchID,
		"campaign": batch[0].Campaign,
		"count":    len(batch),
		"codes":    tokens,
	})
}

// Stats reports aggregate code usage grouped by campaign (admin only).
func (c *CodeController) Stats(ctx *gin.Context) {
	stats, err := c.ledger.Stats(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Errorf("code stats failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to aggregate code stats")
		return
	}
	utils.Success(ctx, stats)
}

// Unused lists a sample of unredeemed codes (admin only).
func (c *CodeController) Unused(ctx *gin.Context) {
	campaign := ctx.Query("campaign")
	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			utils.Error(ctx, http.StatusBadRequest, 40023, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	sample, err := c.ledger.UnusedSample(ctx.Request.Context(), campaign, limit)
	if err != nil {
		utils.Sugar.Errorf("unused code sample failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list unused codes")
		return
	}

	out := make([]gin.H, len(sample))
	for i, sc := range sample {
		out[i] = gin.H{
			"code":       sc.Code,
			"campaign":   sc.Campaign,
			"created_at": sc.CreatedAt,
		}
	}
	utils.Success(ctx, gin.H{"codes": out})
}

type redeemRequest struct {
	Code string `json:"code" binding:"required"`
}

// Redeem consumes a secret code for the authenticated wallet and credits XP.
func (c *CodeController) Redeem(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	wallet, ok := getWallet(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req redeemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "code is required")
		return
	}

	cfg := config.Get()
	if cfg.OneCodePerWallet {
		used, err := c.ledger.HasRedeemerUsedAnyCode(ctx.Request.Context(), wallet)
		if err != nil {
			utils.Sugar.Errorf("redeemer lookup failed: %v", err)
			utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to check redemption history")
			return
		}
		if used {
			utils.Error(ctx, http.StatusBadRequest, 40033, "wallet has already redeemed a code")
			return
		}
	}

	result, err := c.ledger.Redeem(ctx.Request.Context(), req.Code, wallet)
	if err != nil {
		utils.Sugar.Errorf("code redemption failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to redeem code")
		return
	}

	switch result.Outcome {
	case codes.OutcomeInvalid:
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid code")
		return
	case codes.OutcomeAlreadyUsed:
		utils.Respond(ctx, http.StatusBadRequest, 40032, "code already used", gin.H{
			"used_by": result.UsedBy,
			"used_at": result.UsedAt,
		})
		return
	}

	// The code is consumed; credit XP. A failure here is logged loudly but
	// does not un-redeem the code.
	reward := cfg.CodeRedeemXP
	err = c.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}
		user.XP += reward
		return tx.Save(&user).Error
	})
	if err != nil {
		utils.Sugar.Errorf("XP credit failed after redemption for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50025, "code redeemed but XP credit failed")
		return
	}

	utils.InvalidateByPrefix("leaderboard:")

	utils.Success(ctx, gin.H{
		"message":    "code redeemed",
		"campaign":   result.Campaign,
		"xp_awarded": reward,
	})
}
