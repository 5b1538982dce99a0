package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/solquestio/solquest-api/middleware"
	"github.com/solquestio/solquest-api/models"
	"github.com/solquestio/solquest-api/solana"
	"github.com/solquestio/solquest-api/utils"
)

const (
	nonceTTL      = 5 * time.Minute
	tokenDuration = 72 * time.Hour
)

// AuthController handles wallet-based authentication.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new controller instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

type nonceRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

// RequestNonce issues a single-use login challenge for a wallet to sign.
func (a *AuthController) RequestNonce(ctx *gin.Context) {
	var req nonceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "wallet is required")
		return
	}

	wallet := strings.TrimSpace(req.Wallet)
	nonce, err := utils.GenerateLoginNonce()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to create login nonce")
		return
	}
	utils.SaveLoginNonce(wallet, nonce, nonceTTL)

	utils.Success(ctx, gin.H{
		"nonce":   nonce,
		"message": loginMessage(wallet, nonce),
	})
}

type walletLoginRequest struct {
	Wallet    string `json:"wallet" binding:"required"`
	Nonce     string `json:"nonce" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// WalletLogin verifies a signed challenge, upserts the user, and issues a JWT.
func (a *AuthController) WalletLogin(ctx *gin.Context) {
	var req walletLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "wallet, nonce and signature are required")
		return
	}

	wallet := strings.TrimSpace(req.Wallet)
	if !utils.ConsumeLoginNonce(wallet, req.Nonce) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "nonce expired or unknown")
		return
	}
	if !solana.VerifySignature(wallet, loginMessage(wallet, req.Nonce), req.Signature) {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "signature verification failed")
		return
	}

	var user models.User
	err := a.db.Where("wallet = ?", wallet).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{Wallet: wallet}
		err = a.db.Create(&user).Error
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to load user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Wallet, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the presented token for its remaining lifetime.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, 40003, "missing bearer token")
		return
	}
	token := strings.TrimSpace(parts[1])

	claims, err := utils.ParseToken(token)
	if err == nil && claims.ExpiresAt != nil {
		utils.BlacklistToken(token, time.Until(claims.ExpiresAt.Time))
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's full profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to load user")
		return
	}
	utils.Success(ctx, user)
}

type updateProfileRequest struct {
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

// UpdateProfile updates mutable profile fields of the authenticated user.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if len(name) > 64 {
			utils.Error(ctx, http.StatusBadRequest, 40005, "username too long")
			return
		}
		updates["username"] = name
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40006, "nothing to update")
		return
	}

	if err := a.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to update profile")
		return
	}
	utils.Success(ctx, gin.H{"message": "profile updated"})
}

// GetUserPublic returns the public profile for a wallet address.
func (a *AuthController) GetUserPublic(ctx *gin.Context) {
	wallet := ctx.Param("wallet")

	var user models.User
	if err := a.db.Where("wallet = ?", wallet).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to load user")
		return
	}

	utils.Success(ctx, gin.H{
		"wallet":         user.Wallet,
		"username":       user.Username,
		"avatar_url":     user.AvatarURL,
		"xp":             user.XP,
		"current_streak": user.CurrentStreak,
		"created_at":     user.CreatedAt,
	})
}

func loginMessage(wallet, nonce string) string {
	return fmt.Sprintf("SolQuest wants you to sign in with your Solana account:\n%s\n\nNonce: %s", wallet, nonce)
}

func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func getWallet(ctx *gin.Context) (string, bool) {
	wallet := ctx.GetString(middleware.ContextWalletKey)
	return wallet, wallet != ""
}
