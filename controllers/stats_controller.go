package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vlogsite/blogify/models"
	"github.com/vlogsite/blogify/utils"
)

// StatsController provides public site-wide statistics.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the site.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var postCount int64
	var commentCount int64
	var viewsToday int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fall back to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.Post{}).Where("status = ?", models.StatusPublished).Count(&postCount).Error; err != nil {
		postCount = 0
	}

	if err := s.db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		commentCount = 0
	}

	// Buckets are keyed by local midnight, so compare with a half-open
	// day range rather than a formatted date string.
	now := time.Now().In(time.Local)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := s.db.Model(&models.PostView{}).
		Where("date >= ? AND date < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Select("COALESCE(SUM(count),0)").
		Scan(&viewsToday).Error; err != nil {
		viewsToday = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":    userCount,
		"post_count":    postCount,
		"comment_count": commentCount,
		"views_today":   viewsToday,
	})
}
