package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vlogsite/blogify/models"
	"github.com/vlogsite/blogify/utils"
)

// PostController manages CRUD operations for posts, reactions and view
// tracking.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// postPayload is the response projection of a post: the stored record
// plus decoded tag and image lists and reaction counts.
type postPayload struct {
	models.Post
	Tags     []string `json:"tags"`
	Images   []string `json:"images"`
	Likes    int64    `json:"likes"`
	Dislikes int64    `json:"dislikes"`
}

func (p *PostController) buildPayloads(posts []models.Post) []postPayload {
	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}
	likes, dislikes := p.reactionCounts(ids)

	out := make([]postPayload, 0, len(posts))
	for _, post := range posts {
		out = append(out, postPayload{
			Post:     post,
			Tags:     utils.DecodeStringList(post.Tags),
			Images:   utils.DecodeStringList(post.Images),
			Likes:    likes[post.ID],
			Dislikes: dislikes[post.ID],
		})
	}
	return out
}

func (p *PostController) reactionCounts(postIDs []uint) (likes, dislikes map[uint]int64) {
	likes = make(map[uint]int64)
	dislikes = make(map[uint]int64)
	if len(postIDs) == 0 {
		return likes, dislikes
	}
	type row struct {
		PostID uint
		Kind   string
		N      int64
	}
	var rows []row
	if err := p.db.Model(&models.PostReaction{}).
		Select("post_id, kind, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id, kind").
		Scan(&rows).Error; err != nil {
		return likes, dislikes
	}
	for _, r := range rows {
		if r.Kind == models.ReactionLike {
			likes[r.PostID] = r.N
		} else {
			dislikes[r.PostID] = r.N
		}
	}
	return likes, dislikes
}

// CreatePost allows authenticated users to create new posts, in draft
// state unless published explicitly.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title      string          `json:"title" binding:"required,min=1"`
		Content    string          `json:"content" binding:"required"`
		Categories []uint          `json:"categories"`
		Tags       flexibleStrings `json:"tags"`
		Status     string          `json:"status"`
		Images     []string        `json:"images"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}

	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40022, "content cannot be empty")
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}
	if status != models.StatusDraft && status != models.StatusPublished {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid status")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	categories, err := p.loadCategories(req.Categories)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "unknown category")
		return
	}

	post := models.Post{
		UserID:     userID,
		Title:      title,
		Content:    content,
		Status:     status,
		Tags:       utils.EncodeStringList(utils.NormalizeTags(req.Tags)),
		Images:     utils.EncodeStringList(req.Images),
		Categories: categories,
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")

	utils.Created(ctx, gin.H{"post": p.buildPayloads([]models.Post{post})[0]})
}

func (p *PostController) loadCategories(ids []uint) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []models.Category
	if err := p.db.Find(&categories, ids).Error; err != nil {
		return nil, err
	}
	if len(categories) != len(utils.UniqueUint(ids)) {
		return nil, gorm.ErrRecordNotFound
	}
	return categories, nil
}

// ListPosts returns paginated posts including author information.
// Visibility defaults to published posts; an author filtering on their
// own posts sees every state.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("limit"))
	search := strings.TrimSpace(ctx.Query("search"))
	category := strings.TrimSpace(ctx.Query("category"))
	tag := strings.TrimSpace(ctx.Query("tag"))
	author := strings.TrimSpace(ctx.Query("author"))
	followed := ctx.Query("followed") == "true" || ctx.Query("followed") == "1"

	requesterID, _ := getUserID(ctx)

	// Cache only the anonymous browse views: requester-dependent results
	// (own drafts, followed feed) and searches are never cached.
	cacheable := search == "" && author == "" && !followed && requesterID == 0
	cacheKey := fmt.Sprintf("cache:posts:list:cat=%s:tag=%s:page=%d:size=%d", category, tag, page, pageSize)
	if cacheable {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	query := p.db.Model(&models.Post{}).Preload("User").Preload("Categories").Order("created_at DESC")

	// Drafts are visible only when the author filter targets the requester.
	ownView := false
	if author != "" {
		query = query.Where("user_id = ?", author)
		if requesterID != 0 && strconv.Itoa(int(requesterID)) == author {
			ownView = true
		}
	}
	if !ownView {
		query = query.Where("status = ?", models.StatusPublished)
	}

	if search != "" {
		query = query.Where("title LIKE ? OR content LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if category != "" {
		query = query.Where("id IN (?)", p.db.Table("post_categories").
			Select("post_id").Where("category_id = ?", category))
	}
	if tag != "" {
		// Tags are stored as a JSON array of strings.
		query = query.Where("tags LIKE ?", "%\""+tag+"\"%")
	}
	if followed {
		if requesterID == 0 {
			utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required for followed feed")
			return
		}
		query = query.Where("user_id IN (?)", p.db.Model(&models.Follow{}).
			Select("followee_id").Where("follower_id = ?", requesterID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	payload := gin.H{
		"items": p.buildPayloads(posts),
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	}
	if cacheable {
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	}
	utils.Success(ctx, payload)
}

// GetPost returns a single post. A draft is indistinguishable from a
// missing post for anyone but its author.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID := ctx.Param("id")
	requesterID, _ := getUserID(ctx)

	var post models.Post
	if err := p.db.Preload("User").Preload("Categories").First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}

	if post.Status != models.StatusPublished && post.UserID != requesterID {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	utils.Success(ctx, gin.H{"post": p.buildPayloads([]models.Post{post})[0]})
}

// UpdatePost applies a partial patch; only provided fields change and
// only the author may update.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Title      *string          `json:"title"`
		Content    *string          `json:"content"`
		Categories *[]uint          `json:"categories"`
		Tags       *flexibleStrings `json:"tags"`
		Status     *string          `json:"status"`
		Images     *[]string        `json:"images"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid request payload")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only update your own posts")
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
			return
		}
		post.Title = title
	}
	if req.Content != nil {
		content := utils.Sanitize(*req.Content)
		if strings.TrimSpace(content) == "" {
			utils.Error(ctx, http.StatusBadRequest, 40022, "content cannot be empty")
			return
		}
		post.Content = content
	}
	if req.Status != nil {
		if *req.Status != models.StatusDraft && *req.Status != models.StatusPublished {
			utils.Error(ctx, http.StatusBadRequest, 40023, "invalid status")
			return
		}
		post.Status = *req.Status
	}
	if req.Tags != nil {
		post.Tags = utils.EncodeStringList(utils.NormalizeTags(*req.Tags))
	}
	if req.Images != nil {
		post.Images = utils.EncodeStringList(*req.Images)
	}

	if req.Categories != nil {
		categories, err := p.loadCategories(*req.Categories)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40024, "unknown category")
			return
		}
		if err := p.db.Model(&post).Association("Categories").Replace(categories); err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to update categories")
			return
		}
	}

	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")

	utils.Success(ctx, gin.H{"post": p.buildPayloads([]models.Post{post})[0]})
}

// DeletePost removes a post along with its reactions, view counters and
// category links. Comments are addressed by post id and deliberately
// kept; the discussion outlives the post record.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40302, "you can only delete your own posts")
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostView{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Categories").Clear(); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")

	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// ToggleLike toggles the authenticated user's like on a post. Liking
// also clears any standing dislike by the same user; unliking leaves
// dislikes untouched.
func (p *PostController) ToggleLike(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40405, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		var reaction models.PostReaction
		err := tx.Where("post_id = ? AND user_id = ?", post.ID, userID).First(&reaction).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			return tx.Create(&models.PostReaction{PostID: post.ID, UserID: userID, Kind: models.ReactionLike}).Error
		case err != nil:
			return err
		case reaction.Kind == models.ReactionLike:
			return tx.Delete(&reaction).Error
		default:
			// A standing dislike flips to a like; one row per user keeps
			// the two mutually exclusive.
			return tx.Model(&reaction).Update("kind", models.ReactionLike).Error
		}
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to toggle like")
		return
	}

	var likeCount int64
	p.db.Model(&models.PostReaction{}).
		Where("post_id = ? AND kind = ?", post.ID, models.ReactionLike).
		Count(&likeCount)

	utils.Success(ctx, gin.H{"id": post.ID, "likes": likeCount})
}

// ToggleDislike toggles the authenticated user's dislike on a post.
// Symmetric to ToggleLike: disliking clears any standing like, so a user
// never holds both reactions at once.
func (p *PostController) ToggleDislike(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40405, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		var reaction models.PostReaction
		err := tx.Where("post_id = ? AND user_id = ?", post.ID, userID).First(&reaction).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			return tx.Create(&models.PostReaction{PostID: post.ID, UserID: userID, Kind: models.ReactionDislike}).Error
		case err != nil:
			return err
		case reaction.Kind == models.ReactionDislike:
			return tx.Delete(&reaction).Error
		default:
			return tx.Model(&reaction).Update("kind", models.ReactionDislike).Error
		}
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to toggle dislike")
		return
	}

	var dislikeCount int64
	p.db.Model(&models.PostReaction{}).
		Where("post_id = ? AND kind = ?", post.ID, models.ReactionDislike).
		Count(&dislikeCount)

	utils.Success(ctx, gin.H{"id": post.ID, "dislikes": dislikeCount})
}

// TrackView records an anonymous view: the lifetime counter and today's
// daily bucket both advance atomically.
func (p *PostController) TrackView(ctx *gin.Context) {
	var req struct {
		TimeSpent float64 `json:"timeSpent"`
	}
	// The body is optional; a bare POST still counts as a view.
	_ = ctx.ShouldBindJSON(&req)
	if req.TimeSpent < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40026, "timeSpent cannot be negative")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40406, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load post")
		return
	}

	now := time.Now().In(time.Local)
	localMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			Update("views", gorm.Expr("views + 1")).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
		}).Create(&models.PostView{PostID: post.ID, Date: localMidnight, Count: 1}).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to record view")
		return
	}

	utils.Success(ctx, gin.H{"message": "view recorded"})
}
