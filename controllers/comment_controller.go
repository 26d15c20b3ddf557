package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vlogsite/blogify/config"
	"github.com/vlogsite/blogify/models"
	"github.com/vlogsite/blogify/utils"
)

// CommentController manages the discussion attached to posts: comments,
// one level of replies and per-comment likes.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// commentPayload projects a comment with its author's public handle,
// like count and directly nested replies.
type commentPayload struct {
	models.Comment
	Author  string           `json:"author_name"`
	Likes   int64            `json:"likes"`
	Replies []commentPayload `json:"replies"`
}

// ListComments returns every comment on a post, top-level first with
// replies nested one level under their parent.
func (c *CommentController) ListComments(ctx *gin.Context) {
	postID := strings.TrimSpace(ctx.Param("id"))
	if postID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40030, "missing post id")
		return
	}

	var comments []models.Comment
	if err := c.db.Preload("User").Where("post_id = ?", postID).
		Order("created_at ASC").Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list comments")
		return
	}

	likeCounts := c.likeCounts(comments)

	// Group replies under the top-level ancestor of their parent chain,
	// so nothing goes missing even if stored rows nest deeper than one
	// level. A reply whose parent vanished is surfaced as top-level
	// rather than dropped.
	parentOf := make(map[uint]*uint, len(comments))
	for _, cmt := range comments {
		parentOf[cmt.ID] = cmt.ParentID
	}
	root := func(id uint) uint {
		for i := 0; i < len(comments); i++ {
			p := parentOf[id]
			if p == nil {
				return id
			}
			if _, present := parentOf[*p]; !present {
				return id
			}
			id = *p
		}
		return id
	}

	children := make(map[uint][]commentPayload)
	for _, cmt := range comments {
		if r := root(cmt.ID); r != cmt.ID {
			children[r] = append(children[r], commentPayload{
				Comment: cmt,
				Author:  cmt.User.Username,
				Likes:   likeCounts[cmt.ID],
				Replies: []commentPayload{},
			})
		}
	}

	payloads := make([]commentPayload, 0, len(comments))
	for _, cmt := range comments {
		if root(cmt.ID) != cmt.ID {
			continue
		}
		replies := children[cmt.ID]
		if replies == nil {
			replies = []commentPayload{}
		}
		payloads = append(payloads, commentPayload{
			Comment: cmt,
			Author:  cmt.User.Username,
			Likes:   likeCounts[cmt.ID],
			Replies: replies,
		})
	}

	utils.Success(ctx, gin.H{"comments": payloads})
}

func (c *CommentController) likeCounts(comments []models.Comment) map[uint]int64 {
	counts := make(map[uint]int64)
	if len(comments) == 0 {
		return counts
	}
	ids := make([]uint, 0, len(comments))
	for _, cmt := range comments {
		ids = append(ids, cmt.ID)
	}
	type row struct {
		CommentID uint
		N         int64
	}
	var rows []row
	if err := c.db.Model(&models.CommentLike{}).
		Select("comment_id, COUNT(*) AS n").
		Where("comment_id IN ?", ids).
		Group("comment_id").
		Scan(&rows).Error; err != nil {
		return counts
	}
	for _, r := range rows {
		counts[r.CommentID] = r.N
	}
	return counts
}

// CreateComment adds a comment to a post, optionally as a reply to an
// existing comment on the same post. The parent owns the link; the new
// comment's own reply list starts empty.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		PostID  uint   `json:"postId" binding:"required"`
		Content string `json:"content" binding:"required"`
		ReplyTo *uint  `json:"replyTo"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "post id and content are required")
		return
	}

	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40032, "content cannot be empty")
		return
	}

	var post models.Post
	if err := c.db.First(&post, req.PostID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if req.ReplyTo != nil {
		var parent models.Comment
		if err := c.db.First(&parent, *req.ReplyTo).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.Error(ctx, http.StatusNotFound, 40421, "parent comment not found")
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load parent comment")
			return
		}
		if parent.PostID != post.ID {
			utils.Error(ctx, http.StatusBadRequest, 40033, "parent comment belongs to another post")
			return
		}
		// Threads are one level deep: a reply to a reply attaches to the
		// same top-level comment as its target.
		if parent.ParentID != nil {
			req.ReplyTo = parent.ParentID
		}
	}

	comment := models.Comment{
		PostID:   post.ID,
		UserID:   userID,
		ParentID: req.ReplyTo,
		Content:  content,
	}

	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to create comment")
		return
	}

	if err := c.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to load comment")
		return
	}

	utils.Created(ctx, gin.H{"comment": commentPayload{
		Comment: comment,
		Author:  comment.User.Username,
		Replies: []commentPayload{},
	}})
}

// UpdateComment edits a comment's content. Absence and non-ownership
// are both reported as not found so non-authors cannot probe for
// comment ids they do not own.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40034, "content is required")
		return
	}

	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40032, "content cannot be empty")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	commentID := ctx.Param("id")
	var comment models.Comment
	if err := c.db.First(&comment, commentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40422, "comment not found or not authorized")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to load comment")
		return
	}
	if comment.UserID != userID {
		utils.Error(ctx, http.StatusNotFound, 40422, "comment not found or not authorized")
		return
	}

	comment.Content = content
	if err := c.db.Save(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to update comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment removes a comment and detaches its replies so no reply
// reference dangles. Deletion is open to any authenticated user unless
// the owner-only policy is configured.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	commentID := strings.TrimSpace(ctx.Param("id"))
	var comment models.Comment
	if err := c.db.First(&comment, commentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40423, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50047, "failed to load comment")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if config.Get().CommentDeleteOwnerOnly && comment.UserID != userID && !isBlogger(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40320, "you can only delete your own comment")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		// Replies survive as top-level comments; only the link is removed.
		if err := tx.Model(&models.Comment{}).Where("parent_id = ?", comment.ID).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50048, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// ToggleLike toggles the authenticated user's like on a comment.
func (c *CommentController) ToggleLike(ctx *gin.Context) {
	commentID := ctx.Param("id")
	var comment models.Comment
	if err := c.db.First(&comment, commentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40424, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50049, "failed to load comment")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		var like models.CommentLike
		err := tx.Where("comment_id = ? AND user_id = ?", comment.ID, userID).First(&like).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			return tx.Create(&models.CommentLike{CommentID: comment.ID, UserID: userID}).Error
		case err != nil:
			return err
		default:
			return tx.Delete(&like).Error
		}
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to toggle like")
		return
	}

	var likeCount int64
	c.db.Model(&models.CommentLike{}).Where("comment_id = ?", comment.ID).Count(&likeCount)

	utils.Success(ctx, gin.H{"id": comment.ID, "likes": likeCount})
}
