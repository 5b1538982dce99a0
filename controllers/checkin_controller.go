package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/solquestio/solquest-api/checkin"
	"github.com/solquestio/solquest-api/config"
	"github.com/solquestio/solquest-api/models"
	"github.com/solquestio/solquest-api/utils"
)

// CheckInController handles daily check-in endpoints. Day boundaries use the
// configured reference timezone.
type CheckInController struct {
	db  *gorm.DB
	loc *time.Location
}

var errAlreadyCheckedIn = errors.New("already checked in today")

// NewCheckInController creates a new controller instance.
func NewCheckInController(db *gorm.DB) *CheckInController {
	cfg := config.Get()
	loc, err := time.LoadLocation(cfg.CheckinTimezone)
	if err != nil {
		utils.Sugar.Warnf("invalid check-in timezone %q, falling back to UTC: %v", cfg.CheckinTimezone, err)
		loc = time.UTC
	}
	return &CheckInController{db: db, loc: loc}
}

// Status reports whether a check-in right now would be accepted and what it
// would pay, without any side effects.
func (s *CheckInController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load user")
		return
	}

	decision := checkin.Evaluate(time.Now(), user.LastCheckedInAt, user.CurrentStreak, s.loc)
	utils.Success(ctx, gin.H{
		"can_check_in":       decision.CanCheckIn,
		"potential_xp":       decision.PotentialXP,
		"current_streak":     decision.CurrentStreak,
		"xp":                 user.XP,
		"last_checked_in_at": user.LastCheckedInAt,
	})
}

// Daily records a daily check-in and updates streak and XP.
func (s *CheckInController) Daily(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	now := time.Now()
	var awarded int
	var streak int

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}

		decision := checkin.Evaluate(now, user.LastCheckedInAt, user.CurrentStreak, s.loc)
		if !decision.CanCheckIn {
			return errAlreadyCheckedIn
		}

		record := models.CheckIn{
			UserID:         userID,
			CheckinDate:    now,
			XPAwarded:      decision.PotentialXP,
			StreakAchieved: decision.NextStreak,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		user.XP += decision.PotentialXP
		user.CurrentStreak = decision.NextStreak
		user.LastCheckedInAt = &record.CheckinDate

		awarded = decision.PotentialXP
		streak = decision.NextStreak
		return tx.Save(&user).Error
	})

	if err != nil {
		if errors.Is(err, errAlreadyCheckedIn) {
			utils.Error(ctx, http.StatusBadRequest, 40030, err.Error())
			return
		}
		utils.Sugar.Errorf("check-in failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to record check-in")
		return
	}

	utils.InvalidateByPrefix("leaderboard:")

	utils.Success(ctx, gin.H{
		"message":        "check-in successful",
		"xp_awarded":     awarded,
		"current_streak": streak,
	})
}
