package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vlogsite/blogify/middleware"
	"github.com/vlogsite/blogify/models"
)

func newDashboardRouter(db *gorm.DB, d *DashboardController) *gin.Engine {
	r := gin.New()
	r.GET("/api/dashboard/user", middleware.AuthRequired(), d.UserDashboard)
	r.GET("/api/dashboard/post/:id", middleware.AuthRequired(), d.PostAnalytics)
	return r
}

func TestUserDashboard(t *testing.T) {
	db := setupTestDB(t)
	d := NewDashboardController(db)
	r := newDashboardRouter(db, d)

	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	bob := createTestUser(t, db, "bob", "bob@x.com", "Passw0rd!")

	post := createTestPost(t, db, alice, "measured", models.StatusPublished)
	post.Content = strings.Repeat("x", 500)
	post.Views = 100
	db.Save(&post)
	draft := createTestPost(t, db, alice, "hidden draft", models.StatusDraft)
	createTestPost(t, db, bob, "not mine", models.StatusPublished)

	db.Create(&models.PostReaction{PostID: post.ID, UserID: bob.ID, Kind: models.ReactionLike})
	db.Create(&models.Comment{PostID: post.ID, UserID: bob.ID, Content: "hey"})

	w := doJSON(t, r, http.MethodGet, "/api/dashboard/user", bearerFor(t, alice), nil)
	assertStatus(t, w, http.StatusOK)
	data := decodeData(t, w)

	stats := data["stats"].(map[string]interface{})
	if stats["total_posts"].(float64) != 2 {
		t.Fatalf("total_posts = %v, want 2 (drafts count)", stats["total_posts"])
	}
	if stats["total_views"].(float64) != 100 {
		t.Fatalf("total_views = %v", stats["total_views"])
	}
	if stats["total_likes"].(float64) != 1 || stats["total_comments"].(float64) != 1 {
		t.Fatalf("stats = %v", stats)
	}
	// 1 like + 1 comment over 100 views.
	if stats["engagement_rate"].(float64) != 2 {
		t.Fatalf("engagement_rate = %v, want 2", stats["engagement_rate"])
	}

	posts := data["posts"].([]interface{})
	if len(posts) != 2 {
		t.Fatalf("posts = %d, want 2", len(posts))
	}
	var measured map[string]interface{}
	for _, p := range posts {
		if m := p.(map[string]interface{}); m["title"] == "measured" {
			measured = m
		}
	}
	if measured == nil {
		t.Fatal("measured post missing from dashboard")
	}
	// 120s base + 500 chars / 10.
	if measured["estimated_time_seconds"].(float64) != 170 {
		t.Fatalf("estimated_time_seconds = %v, want 170", measured["estimated_time_seconds"])
	}

	top := data["top_posts"].([]interface{})
	if len(top) != 1 || top[0].(map[string]interface{})["title"] != "measured" {
		t.Fatalf("top_posts = %v (draft with no engagement must not rank)", top)
	}

	series := data["views_per_day"].([]interface{})
	if len(series) != 30 {
		t.Fatalf("views_per_day has %d points, want 30", len(series))
	}

	_ = draft

	w = doJSON(t, r, http.MethodGet, "/api/dashboard/user", "", nil)
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestPostAnalyticsDeterministic(t *testing.T) {
	db := setupTestDB(t)
	d := NewDashboardController(db)
	d.seed = func(models.Post) int64 { return 99 }
	fixed := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }
	r := newDashboardRouter(db, d)

	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	post := createTestPost(t, db, alice, "analyzed", models.StatusPublished)
	if err := db.Model(&post).Updates(map[string]interface{}{
		"views":      50,
		"created_at": fixed.AddDate(0, 0, -15),
	}).Error; err != nil {
		t.Fatalf("backdate post: %v", err)
	}

	path := "/api/dashboard/post/" + strconv.Itoa(int(post.ID))
	first := doJSON(t, r, http.MethodGet, path, bearerFor(t, alice), nil)
	assertStatus(t, first, http.StatusOK)
	second := doJSON(t, r, http.MethodGet, path, bearerFor(t, alice), nil)
	assertStatus(t, second, http.StatusOK)

	if first.Body.String() != second.Body.String() {
		t.Fatal("analytics for identical state should be identical")
	}

	data := decodeData(t, first)
	history := data["view_history"].([]interface{})
	// 50 views over 15 days: entry count is max(15, 10) = 15.
	if len(history) != 15 {
		t.Fatalf("view_history entries = %d, want 15", len(history))
	}
}

func TestPostAnalyticsAuthorization(t *testing.T) {
	db := setupTestDB(t)
	d := NewDashboardController(db)
	r := newDashboardRouter(db, d)

	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	bob := createTestUser(t, db, "bob", "bob@x.com", "Passw0rd!")
	post := createTestPost(t, db, alice, "private metrics", models.StatusPublished)

	w := doJSON(t, r, http.MethodGet, "/api/dashboard/post/"+strconv.Itoa(int(post.ID)), bearerFor(t, bob), nil)
	assertStatus(t, w, http.StatusForbidden)

	w = doJSON(t, r, http.MethodGet, "/api/dashboard/post/9999", bearerFor(t, alice), nil)
	assertStatus(t, w, http.StatusNotFound)
}
