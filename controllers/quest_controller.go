package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/solquestio/solquest-api/models"
	"github.com/solquestio/solquest-api/utils"
)

// QuestController handles quest listing, completion, and admin management.
type QuestController struct {
	db *gorm.DB
}

var (
	errQuestNotActive       = errors.New("quest not available")
	errQuestAlreadyComplete = errors.New("quest already completed")
)

// NewQuestController creates a new controller instance.
func NewQuestController(db *gorm.DB) *QuestController {
	return &QuestController{db: db}
}

// List returns all active quests in display order.
func (q *QuestController) List(ctx *gin.Context) {
	var quests []models.Quest
	err := q.db.Where("active = ?", true).Order("sort_order ASC, id ASC").Find(&quests).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load quests")
		return
	}
	utils.Success(ctx, gin.H{"quests": quests})
}

// Get returns a single quest by id.
func (q *QuestController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid quest id")
		return
	}

	var quest models.Quest
	if err := q.db.First(&quest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "quest not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load quest")
		return
	}
	utils.Success(ctx, quest)
}

// Complete records a quest completion for the authenticated user and
// credits its XP exactly once.
func (q *QuestController) Complete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	questID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid quest id")
		return
	}

	var awarded int
	err = q.db.Transaction(func(tx *gorm.DB) error {
		var quest models.Quest
		if err := tx.First(&quest, questID).Error; err != nil {
			return err
		}
		if !quest.Active {
			return errQuestNotActive
		}

		var existing models.QuestCompletion
		err := tx.Where("user_id = ? AND quest_id = ?", userID, quest.ID).First(&existing).Error
		if err == nil {
			return errQuestAlreadyComplete
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}

		completion := models.QuestCompletion{
			UserID:      userID,
			QuestID:     quest.ID,
			XPAwarded:   quest.XPReward,
			CompletedAt: time.Now(),
		}
		if err := tx.Create(&completion).Error; err != nil {
			// The unique user+quest index closes the race the pre-check
			// leaves open.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errQuestAlreadyComplete
			}
			return err
		}

		user.XP += quest.XPReward
		awarded = quest.XPReward
		return tx.Save(&user).Error
	})

	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.Error(ctx, http.StatusNotFound, 40440, "quest not found")
		case errors.Is(err, errQuestNotActive):
			utils.Error(ctx, http.StatusBadRequest, 40041, err.Error())
		case errors.Is(err, errQuestAlreadyComplete):
			utils.Error(ctx, http.StatusBadRequest, 40042, err.Error())
		default:
			utils.Sugar.Errorf("quest completion failed for user %d quest %d: %v", userID, questID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to complete quest")
		}
		return
	}

	utils.InvalidateByPrefix("leaderboard:")

	utils.Success(ctx, gin.H{
		"message":    "quest completed",
		"xp_awarded": awarded,
	})
}

type questRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	XPReward    int    `json:"xp_reward" binding:"required"`
	Active      *bool  `json:"active"`
	SortOrder   int    `json:"sort_order"`
}

// Create adds a new quest (admin only). Description HTML is sanitized.
func (q *QuestController) Create(ctx *gin.Context) {
	var req questRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "title and xp_reward are required")
		return
	}
	if req.XPReward <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40044, "xp_reward must be positive")
		return
	}

	quest := models.Quest{
		Title:       req.Title,
		Description: utils.Sanitize(req.Description),
		Category:    req.Category,
		XPReward:    req.XPReward,
		Active:      true,
		SortOrder:   req.SortOrder,
	}
	if req.Active != nil {
		quest.Active = *req.Active
	}

	if err := q.db.Create(&quest).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to create quest")
		return
	}
	utils.Success(ctx, quest)
}

// Update modifies an existing quest (admin only).
func (q *QuestController) Update(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid quest id")
		return
	}

	var quest models.Quest
	if err := q.db.First(&quest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "quest not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load quest")
		return
	}

	var req questRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid request body")
		return
	}
	if req.XPReward <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40044, "xp_reward must be positive")
		return
	}

	quest.Title = req.Title
	quest.Description = utils.Sanitize(req.Description)
	quest.Category = req.Category
	quest.XPReward = req.XPReward
	quest.SortOrder = req.SortOrder
	if req.Active != nil {
		quest.Active = *req.Active
	}

	if err := q.db.Save(&quest).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to update quest")
		return
	}
	utils.Success(ctx, quest)
}
