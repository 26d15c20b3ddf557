package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vlogsite/blogify/models"
)

func TestGetStats(t *testing.T) {
	db := setupTestDB(t)
	r := gin.New()
	r.GET("/api/stats", NewStatsController(db).GetStats)

	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	post := createTestPost(t, db, alice, "counted", models.StatusPublished)
	createTestPost(t, db, alice, "draft", models.StatusDraft)
	db.Create(&models.Comment{PostID: post.ID, UserID: alice.ID, Content: "c"})

	w := doJSON(t, r, http.MethodGet, "/api/stats", "", nil)
	assertStatus(t, w, http.StatusOK)
	data := decodeData(t, w)

	if data["user_count"].(float64) != 1 {
		t.Fatalf("user_count = %v", data["user_count"])
	}
	// Only published posts count.
	if data["post_count"].(float64) != 1 {
		t.Fatalf("post_count = %v", data["post_count"])
	}
	if data["comment_count"].(float64) != 1 {
		t.Fatalf("comment_count = %v", data["comment_count"])
	}
	if data["views_today"].(float64) != 0 {
		t.Fatalf("views_today = %v, want 0 with no buckets", data["views_today"])
	}
}

func TestGetStatsCountsTodaysViews(t *testing.T) {
	db := setupTestDB(t)
	r := gin.New()
	r.GET("/api/stats", NewStatsController(db).GetStats)

	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	post := createTestPost(t, db, alice, "viewed", models.StatusPublished)

	now := time.Now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := db.Create(&models.PostView{PostID: post.ID, Date: today, Count: 4}).Error; err != nil {
		t.Fatalf("seed today's bucket: %v", err)
	}
	// Yesterday's bucket must not count.
	other := createTestPost(t, db, alice, "stale", models.StatusPublished)
	if err := db.Create(&models.PostView{PostID: other.ID, Date: today.AddDate(0, 0, -1), Count: 9}).Error; err != nil {
		t.Fatalf("seed yesterday's bucket: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/stats", "", nil)
	assertStatus(t, w, http.StatusOK)
	data := decodeData(t, w)
	if data["views_today"].(float64) != 4 {
		t.Fatalf("views_today = %v, want 4", data["views_today"])
	}
}
