package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vlogsite/blogify/config"
	"github.com/vlogsite/blogify/middleware"
	"github.com/vlogsite/blogify/models"
	"github.com/vlogsite/blogify/utils"
)

// AuthController handles registration, sessions, profiles and the
// follow graph.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register handles account registration with bcrypt hashing. No session
// is issued; the caller must log in separately.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		// A pointer so an empty confirmation still gets compared; only a
		// truly absent field skips the check.
		ConfirmPassword *string `json:"confirmPassword"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.ConfirmPassword != nil && req.Password != *req.ConfirmPassword {
		utils.Error(ctx, http.StatusBadRequest, 40002, "passwords do not match")
		return
	}

	if problems := utils.ValidatePasswordPolicy(req.Password); len(problems) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, 40003, "password does not meet complexity requirements", problems)
		return
	}

	var existing models.User
	if err := a.db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "user already exists with this email or username")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to check existing users")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to create user")
		return
	}

	utils.Created(ctx, gin.H{"message": "user registered successfully"})
}

// Login verifies credentials and issues a session token carried both in
// an HttpOnly cookie and in the response body for API clients.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		// Same message for unknown email and bad password.
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	role := user.Role
	if config.IsBlogger(user.Username) {
		role = RoleBlogger
	}

	token, err := utils.GenerateToken(user.ID, user.Username, role, utils.TokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(middleware.SessionCookieName, token, int(utils.TokenTTL.Seconds()), "/", "", false, true)

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user.Public(),
	})
}

// Logout clears the session cookie and revokes the presented token
// until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	if token := sessionToken(ctx); token != "" {
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	utils.Success(ctx, gin.H{"message": "logout successful"})
}

func sessionToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(middleware.SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(ctx.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Profile returns the authenticated user's own record.
func (a *AuthController) Profile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to load user")
		return
	}

	var followerCount, followingCount int64
	a.db.Model(&models.Follow{}).Where("followee_id = ?", user.ID).Count(&followerCount)
	a.db.Model(&models.Follow{}).Where("follower_id = ?", user.ID).Count(&followingCount)

	utils.Success(ctx, gin.H{
		"user":      user.Public(),
		"followers": followerCount,
		"following": followingCount,
	})
}

// GetUserPublic returns public user info by ID.
func (a *AuthController) GetUserPublic(ctx *gin.Context) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	if idStr == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing user id")
		return
	}
	if b, ok := utils.CacheGetBytes("cache:user:public:" + idStr); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	var user models.User
	if err := a.db.First(&user, idStr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to get user")
		return
	}

	var followerCount, followingCount int64
	a.db.Model(&models.Follow{}).Where("followee_id = ?", user.ID).Count(&followerCount)
	a.db.Model(&models.Follow{}).Where("follower_id = ?", user.ID).Count(&followingCount)

	payload := gin.H{
		"user":      user.Public(),
		"followers": followerCount,
		"following": followingCount,
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON("cache:user:public:"+idStr, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// Follow adds a directed edge from the authenticated user to the target
// user. Following an already-followed user is a no-op, not an error.
func (a *AuthController) Follow(ctx *gin.Context) {
	actorID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	targetID, ok := a.resolveFollowTarget(ctx, actorID)
	if !ok {
		return
	}

	edge := models.Follow{FollowerID: actorID, FolloweeID: targetID}
	if err := a.db.Where(&edge).FirstOrCreate(&edge).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to follow user")
		return
	}

	utils.InvalidateByPrefix("cache:user:public:")
	utils.Success(ctx, gin.H{"message": "followed user"})
}

// Unfollow removes the edge; it is a no-op when not currently following.
func (a *AuthController) Unfollow(ctx *gin.Context) {
	actorID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	targetID, ok := a.resolveFollowTarget(ctx, actorID)
	if !ok {
		return
	}

	if err := a.db.Where("follower_id = ? AND followee_id = ?", actorID, targetID).
		Delete(&models.Follow{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50008, "failed to unfollow user")
		return
	}

	utils.InvalidateByPrefix("cache:user:public:")
	utils.Success(ctx, gin.H{"message": "unfollowed user"})
}

// resolveFollowTarget validates the :id path parameter for follow and
// unfollow: the target must exist and differ from the actor.
func (a *AuthController) resolveFollowTarget(ctx *gin.Context, actorID uint) (uint, bool) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	var target models.User
	if err := a.db.First(&target, idStr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40412, "user not found")
			return 0, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50009, "failed to load user")
		return 0, false
	}
	if target.ID == actorID {
		utils.Error(ctx, http.StatusBadRequest, 40010, "you can't follow yourself")
		return 0, false
	}
	return target.ID, true
}

// ListFollowers returns the public projection of everyone following the user.
func (a *AuthController) ListFollowers(ctx *gin.Context) {
	a.listFollowEdges(ctx, "followee_id", "follower_id")
}

// ListFollowing returns the public projection of everyone the user follows.
func (a *AuthController) ListFollowing(ctx *gin.Context) {
	a.listFollowEdges(ctx, "follower_id", "followee_id")
}

func (a *AuthController) listFollowEdges(ctx *gin.Context, whereCol, selectCol string) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	var user models.User
	if err := a.db.First(&user, idStr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40413, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load user")
		return
	}

	var users []models.User
	sub := a.db.Model(&models.Follow{}).Select(selectCol).Where(whereCol+" = ?", user.ID)
	if err := a.db.Where("id IN (?)", sub).Order("username ASC").Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to list users")
		return
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	utils.Success(ctx, gin.H{"users": public})
}
