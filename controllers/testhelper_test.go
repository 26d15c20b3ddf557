package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vlogsite/blogify/config"
	"github.com/vlogsite/blogify/middleware"
	"github.com/vlogsite/blogify/models"
	"github.com/vlogsite/blogify/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.SetForTesting(config.AppConfig{
		JWTSecret:          "test-secret",
		RateLimitPerMinute: 1000,
		LogLevel:           "silent",
	})
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.PostReaction{},
		&models.PostView{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Category{},
		&models.Tag{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, email, password string) models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{Username: username, Email: email, PasswordHash: hash}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func bearerFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, utils.TokenTTL)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

// doJSON performs a request against the engine with an optional JSON
// body and Authorization header.
func doJSON(t *testing.T, r *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp.Data
}

// newAuthRouter mounts the identity and social-graph routes.
func newAuthRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	a := NewAuthController(db)
	r.POST("/api/users/register", a.Register)
	r.POST("/api/users/login", a.Login)
	r.POST("/api/users/logout", a.Logout)
	r.GET("/api/users/profile", middleware.AuthRequired(), a.Profile)
	r.POST("/api/users/:id/follow", middleware.AuthRequired(), a.Follow)
	r.POST("/api/users/:id/unfollow", middleware.AuthRequired(), a.Unfollow)
	r.GET("/api/users/:id/followers", a.ListFollowers)
	r.GET("/api/users/:id/following", a.ListFollowing)
	r.GET("/api/users/:id", a.GetUserPublic)
	return r
}

// newPostRouter mounts the content-manager routes.
func newPostRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	p := NewPostController(db)
	r.GET("/api/posts", middleware.AuthOptional(), p.ListPosts)
	r.GET("/api/posts/:id", middleware.AuthOptional(), p.GetPost)
	r.POST("/api/posts", middleware.AuthRequired(), p.CreatePost)
	r.PUT("/api/posts/:id", middleware.AuthRequired(), p.UpdatePost)
	r.DELETE("/api/posts/:id", middleware.AuthRequired(), p.DeletePost)
	r.POST("/api/posts/:id/like", middleware.AuthRequired(), p.ToggleLike)
	r.POST("/api/posts/:id/dislike", middleware.AuthRequired(), p.ToggleDislike)
	r.POST("/api/posts/:id/track-view", p.TrackView)
	return r
}

// newCommentRouter mounts the discussion-manager routes.
func newCommentRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	c := NewCommentController(db)
	r.GET("/api/comments/:id", c.ListComments)
	r.POST("/api/comments", middleware.AuthRequired(), c.CreateComment)
	r.PUT("/api/comments/:id", middleware.AuthRequired(), c.UpdateComment)
	r.DELETE("/api/comments/:id", middleware.AuthRequired(), c.DeleteComment)
	r.POST("/api/comments/:id/like", middleware.AuthRequired(), c.ToggleLike)
	return r
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}
