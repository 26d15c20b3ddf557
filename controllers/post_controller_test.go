package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/vlogsite/blogify/models"
)

func createTestPost(t *testing.T, db *gorm.DB, author models.User, title, status string) models.Post {
	t.Helper()
	post := models.Post{
		UserID:  author.ID,
		Title:   title,
		Content: "<p>content of " + title + "</p>",
		Status:  status,
		Tags:    "[]",
		Images:  "[]",
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return post
}

func postPath(id uint, action string) string {
	p := "/api/posts/" + strconv.Itoa(int(id))
	if action != "" {
		p += "/" + action
	}
	return p
}

func TestCreatePost(t *testing.T) {
	db := setupTestDB(t)
	r := newPostRouter(db)
	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")

	w := doJSON(t, r, http.MethodPost, "/api/posts", bearerFor(t, alice), map[string]interface{}{
		"title":   "  First post  ",
		"content": "<p>hi</p><script>alert(1)</script>",
		"tags":    "go, web ,go",
		"status":  "published",
	})
	assertStatus(t, w, http.StatusCreated)

	var stored models.Post
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("post not stored: %v", err)
	}
	if stored.Title != "First post" {
		t.Fatalf("title = %q, want trimmed", stored.Title)
	}
	if strings.Contains(stored.Content, "script") {
		t.Fatalf("content not sanitized: %q", stored.Content)
	}
	if stored.Tags != `["go","web"]` {
		t.Fatalf("tags = %q", stored.Tags)
	}

	// Anonymous creation is rejected.
	w = doJSON(t, r, http.MethodPost, "/api/posts", "", map[string]interface{}{
		"title": "x", "content": "y",
	})
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestCreatePostDefaultsToDraft(t *testing.T) {
	db := setupTestDB(t)
	r := newPostRouter(db)
	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")

	w := doJSON(t, r, http.MethodPost, "/api/posts", bearerFor(t, alice), map[string]interface{}{
		"title": "Draft", "content": "<p>wip</p>",
	})
	assertStatus(t, w, http.StatusCreated)

	var stored models.Post
	db.First(&stored)
	if stored.Status != models.StatusDraft {
		t.Fatalf("status = %q, want draft", stored.Status)
	}

	w = doJSON(t, r, http.MethodPost, "/api/posts", bearerFor(t, alice), map[string]interface{}{
		"title": "Bad", "content": "x", "status": "archived",
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestDraftVisibility(t *testing.T) {
	db := setupTestDB(t)
	r := newPostRouter(db)
	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	bob := createTestUser(t, db, "bob", "bob@x.com", "Passw0rd!")

	pub := createTestPost(t, db, alice, "public one", models.StatusPublished)
	draft := createTestPost(t, db, alice, "secret draft", models.StatusDraft)

	// Anonymous list sees only the published post.
	w := doJSON(t, r, http.MethodGet, "/api/posts", "", nil)
	assertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "public one") || strings.Contains(body, "secret draft") {
		t.Fatalf("anonymous list leaked a draft: %s", body)
	}

	// The author filtering on themselves sees both.
	w = doJSON(t, r, http.MethodGet, "/api/posts?author="+strconv.Itoa(int(alice.ID)), bearerFor(t, alice), nil)
	assertStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "secret draft") {
		t.Fatalf("author should see own drafts: %s", w.Body.String())
	}

	// Another user filtering on alice does not.
	w = doJSON(t, r, http.MethodGet, "/api/posts?author="+strconv.Itoa(int(alice.ID)), bearerFor(t, bob), nil)
	assertStatus(t, w, http.StatusOK)
	if strings.Contains(w.Body.String(), "secret draft") {
		t.Fatalf("draft leaked to another user: %s", w.Body.String())
	}

	// Fetching the draft directly: 404 for everyone but the author.
	w = doJSON(t, r, http.MethodGet, postPath(draft.ID, ""), bearerFor(t, bob), nil)
	assertStatus(t, w, http.StatusNotFound)
	w = doJSON(t, r, http.MethodGet, postPath(draft.ID, ""), "", nil)
	assertStatus(t, w, http.StatusNotFound)
	w = doJSON(t, r, http.MethodGet, postPath(draft.ID, ""), bearerFor(t, alice), nil)
	assertStatus(t, w, http.StatusOK)
	w = doJSON(t, r, http.MethodGet, postPath(pub.ID, ""), "", nil)
	assertStatus(t, w, http.StatusOK)
}

func TestListPostsPagination(t *testing.T) {
	db := setupTestDB(t)
	r := newPostRouter(db)
	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	for i := 0; i < 12; i++ {
		createTestPost(t, db, alice, "post "+strconv.Itoa(i), models.StatusPublished)
	}

	w := doJSON(t, r, http.MethodGet, "/api/posts?page=2&limit=5", "", nil)
	assertStatus(t, w, http.StatusOK)
	data := decodeData(t, w)
	items := data["items"].([]interface{})
	if len(items) != 5 {
		t.Fatalf("page 2 item count = %d, want 5", len(items))
	}
	pg := data["pagination"].(map[string]interface{})
	if pg["total"].(float64) != 12 || pg["total_pages"].(float64) != 3 {
		t.Fatalf("pagination = %v", pg)
	}
}

func TestListPostsSearchAndTag(t *testing.T) {
	db := setupTestDB(t)
	r := newPostRouter(db)
	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")

	match := createTestPost(t, db, alice, "Gopher tricks", models.StatusPublished)
	match.Tags = `["go","tips"]`
	db.Save(&match)
	createTestPost(t, db, alice, "Cooking", models.StatusPublished)

	w := doJSON(t, r, http.MethodGet, "/api/posts?search=Gopher", "", nil)
	assertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "Gopher tricks") || strings.Contains(body, "Cooking") {
		t.Fatalf("search results wrong: %s", body)
	}

	w = doJSON(t, r, http.MethodGet, "/api/posts?tag=go", "", nil)
	assertStatus(t, w, http.StatusOK)
	body = w.Body.String()
	if !strings.Contains(body, "Gopher tricks") || strings.Contains(body, "Cooking") {
		t.Fatalf("tag filter wrong: %s", body)
	}
}

func TestFollowedFeed(t *testing.T) {
	db := setupTestDB(t)
	r := newPostRouter(db)
	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	bob := createTestUser(t, db, "bob", "bob@x.com", "Passw0rd!")
	carol := createTestUser(t, db, "carol", "carol@x.com", "Passw0rd!")

	createTestPost(t, db, alice, "from alice", models.StatusPublished)
	createTestPost(t, db, carol, "from carol", models.StatusPublished)
	if err := db.Create(&models.Follow{FollowerID: bob.ID, FolloweeID: alice.ID}).Error; err != nil {
		t.Fatalf("seed follow: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/posts?followed=true", bearerFor(t, bob), nil)
	assertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "from alice") || strings.Contains(body, "from carol") {
		t.Fatalf("followed feed wrong: %s", body)
	}

	// The followed feed needs an identity.
	w = doJSON(t, r, http.MethodGet, "/api/posts?followed=true", "", nil)
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestUpdatePostOwnership(t *testing.T) {
	db := setupTestDB(t)
	r := newPostRouter(db)
	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	bob := createTestUser(t, db, "bob", "bob@x.com", "Passw0rd!")
	post := createTestPost(t, db, alice, "original", models.StatusPublished)

	w := doJSON(t, r, http.MethodPut, postPath(post.ID, ""), bearerFor(t, bob), map[string]interface{}{
		"title": "hijacked",
	})
	assertStatus(t, w, http.StatusForbidden)

	w = doJSON(t, r, http.MethodPut, postPath(post.ID, ""), bearerFor(t, alice), map[string]interface{}{
		"title": "renamed",
	})
	assertStatus(t, w, http.StatusOK)

	var stored models.Post
	db.First(&stored, post.ID)
	if stored.Title != "renamed" {
		t.Fatalf("title = %q", stored.Title)
	}
	// Untouched fields survive a partial patch.
	if stored.Status != models.StatusPublished || stored.Content == "" {
		t.Fatalf("partial patch clobbered fields: %+v", stored)
	}
}

func TestDeletePost(t *testing.T) {
	db := setupTestDB(t)
	r := newPostRouter(db)
	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	bob := createTestUser(t, db, "bob", "bob@x.com", "Passw0rd!")
	post := createTestPost(t, db, alice, "doomed", models.StatusPublished)
	db.Create(&models.PostReaction{PostID: post.ID, UserID: bob.ID, Kind: models.ReactionLike})

	w := doJSON(t, r, http.MethodDelete, postPath(post.ID, ""), bearerFor(t, bob), nil)
	assertStatus(t, w, http.StatusForbidden)

	w = doJSON(t, r, http.MethodDelete, postPath(post.ID, ""), bearerFor(t, alice), nil)
	assertStatus(t, w, http.StatusOK)

	var posts, reactions int64
	db.Model(&models.Post{}).Count(&posts)
	db.Model(&models.PostReaction{}).Count(&reactions)
	if posts != 0 || reactions != 0 {
		t.Fatalf("leftovers after delete: posts=%d reactions=%d", posts, reactions)
	}
}

func TestToggleLikeAndDislike(t *testing.T) {
	db := setupTestDB(t)
	r := newPostRouter(db)
	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	bob := createTestUser(t, db, "bob", "bob@x.com", "Passw0rd!")
	post := createTestPost(t, db, alice, "reactable", models.StatusPublished)
	auth := bearerFor(t, bob)

	countKind := func(kind string) int64 {
		var n int64
		db.Model(&models.PostReaction{}).Where("post_id = ? AND kind = ?", post.ID, kind).Count(&n)
		return n
	}

	// Like, then like again: back to zero.
	w := doJSON(t, r, http.MethodPost, postPath(post.ID, "like"), auth, nil)
	assertStatus(t, w, http.StatusOK)
	if countKind(models.ReactionLike) != 1 {
		t.Fatal("like not recorded")
	}
	w = doJSON(t, r, http.MethodPost, postPath(post.ID, "like"), auth, nil)
	assertStatus(t, w, http.StatusOK)
	if countKind(models.ReactionLike) != 0 {
		t.Fatal("second like should remove the first")
	}

	// Like, then dislike: the dislike replaces the like.
	doJSON(t, r, http.MethodPost, postPath(post.ID, "like"), auth, nil)
	w = doJSON(t, r, http.MethodPost, postPath(post.ID, "dislike"), auth, nil)
	assertStatus(t, w, http.StatusOK)
	if countKind(models.ReactionLike) != 0 || countKind(models.ReactionDislike) != 1 {
		t.Fatalf("like=%d dislike=%d, want 0/1", countKind(models.ReactionLike), countKind(models.ReactionDislike))
	}

	// And back again.
	w = doJSON(t, r, http.MethodPost, postPath(post.ID, "like"), auth, nil)
	assertStatus(t, w, http.StatusOK)
	if countKind(models.ReactionLike) != 1 || countKind(models.ReactionDislike) != 0 {
		t.Fatal("dislike should flip back to like")
	}

	w = doJSON(t, r, http.MethodPost, postPath(post.ID, "like"), "", nil)
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestTrackView(t *testing.T) {
	db := setupTestDB(t)
	r := newPostRouter(db)
	alice := createTestUser(t, db, "alice", "alice@x.com", "Passw0rd!")
	post := createTestPost(t, db, alice, "viewed", models.StatusPublished)

	for i := 0; i < 3; i++ {
		w := doJSON(t, r, http.MethodPost, postPath(post.ID, "track-view"), "", nil)
		assertStatus(t, w, http.StatusOK)
	}

	var stored models.Post
	db.First(&stored, post.ID)
	if stored.Views != 3 {
		t.Fatalf("views = %d, want 3", stored.Views)
	}

	// All three views land in a single daily bucket.
	var buckets []models.PostView
	db.Where("post_id = ?", post.ID).Find(&buckets)
	if len(buckets) != 1 || buckets[0].Count != 3 {
		t.Fatalf("daily buckets = %+v", buckets)
	}

	w := doJSON(t, r, http.MethodPost, postPath(post.ID, "track-view"), "", map[string]interface{}{
		"timeSpent": -5,
	})
	assertStatus(t, w, http.StatusBadRequest)

	w = doJSON(t, r, http.MethodPost, "/api/posts/9999/track-view", "", nil)
	assertStatus(t, w, http.StatusNotFound)
}
