package controllers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vlogsite/blogify/models"
	"github.com/vlogsite/blogify/utils"
)

// DashboardController derives read-only engagement statistics from
// post, reaction and comment state. It is not a system of record.
type DashboardController struct {
	db *gorm.DB
	// seed produces the pseudo-random seed for a post's synthesized
	// view history. Deterministic per request state so analytics are
	// reproducible and testable.
	seed func(post models.Post) int64
	// now is injectable for tests.
	now func() time.Time
}

// NewDashboardController creates a DashboardController with the default
// seed derivation and clock.
func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{
		db:   db,
		seed: func(post models.Post) int64 { return int64(post.ID)<<20 ^ post.Views },
		now:  time.Now,
	}
}

// UserDashboard aggregates per-post and overall statistics for every
// post authored by the requester, drafts included.
func (d *DashboardController) UserDashboard(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var posts []models.Post
	if err := d.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to load posts")
		return
	}

	stats, err := d.buildPostStats(posts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to aggregate engagement")
		return
	}

	var totalViews, totalLikes, totalDislikes, totalComments, totalTime int64
	for _, s := range stats {
		totalViews += s.Views
		totalLikes += s.Likes
		totalDislikes += s.Dislikes
		totalComments += s.Comments
		totalTime += s.EstimatedTime
	}

	utils.Success(ctx, gin.H{
		"stats": gin.H{
			"total_posts":        len(posts),
			"total_views":        totalViews,
			"total_likes":        totalLikes,
			"total_dislikes":     totalDislikes,
			"total_comments":     totalComments,
			"total_time_seconds": totalTime,
			"engagement_rate":    engagementRate(totalLikes, totalDislikes, totalComments, totalViews),
		},
		"posts":         stats,
		"top_posts":     topPosts(stats, 5),
		"views_per_day": dailyViewSeries(stats, d.now()),
	})
}

// PostAnalytics returns the derived metrics for one post plus a
// synthesized view history. Author-only.
func (d *DashboardController) PostAnalytics(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var post models.Post
	if err := d.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to load post")
		return
	}
	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40340, "not authorized to view analytics for this post")
		return
	}

	stats, err := d.buildPostStats([]models.Post{post})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to aggregate engagement")
		return
	}
	stat := stats[0]

	rng := rand.New(rand.NewSource(d.seed(post)))
	history := synthesizeViewHistory(rng, post.Views, post.CreatedAt, d.now())

	utils.Success(ctx, gin.H{
		"post":            stat,
		"engagement_rate": engagementRate(stat.Likes, stat.Dislikes, stat.Comments, stat.Views),
		"view_history":    history,
	})
}

// buildPostStats fans out over reactions and comments for the given
// posts and folds everything into per-post metric rows.
func (d *DashboardController) buildPostStats(posts []models.Post) ([]postStat, error) {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	likes := make(map[uint]int64)
	dislikes := make(map[uint]int64)
	comments := make(map[uint]int64)

	if len(ids) > 0 {
		type reactionRow struct {
			PostID uint
			Kind   string
			N      int64
		}
		var reactions []reactionRow
		if err := d.db.Model(&models.PostReaction{}).
			Select("post_id, kind, COUNT(*) AS n").
			Where("post_id IN ?", ids).
			Group("post_id, kind").
			Scan(&reactions).Error; err != nil {
			return nil, err
		}
		for _, r := range reactions {
			if r.Kind == models.ReactionLike {
				likes[r.PostID] = r.N
			} else {
				dislikes[r.PostID] = r.N
			}
		}

		type commentRow struct {
			PostID uint
			N      int64
		}
		var commentCounts []commentRow
		if err := d.db.Model(&models.Comment{}).
			Select("post_id, COUNT(*) AS n").
			Where("post_id IN ?", ids).
			Group("post_id").
			Scan(&commentCounts).Error; err != nil {
			return nil, err
		}
		for _, r := range commentCounts {
			comments[r.PostID] = r.N
		}
	}

	stats := make([]postStat, 0, len(posts))
	for _, p := range posts {
		stats = append(stats, postStat{
			ID:            p.ID,
			Title:         p.Title,
			Status:        p.Status,
			CreatedAt:     p.CreatedAt,
			Likes:         likes[p.ID],
			Dislikes:      dislikes[p.ID],
			Comments:      comments[p.ID],
			Views:         p.Views,
			EstimatedTime: estimatedTimeSeconds(len(p.Content)),
		})
	}
	return stats, nil
}
