package models

import "time"

// Post lifecycle states. A draft is visible only to its author.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post represents a blog post created by a user. Likes and dislikes live
// in post_reactions; a database unique index guarantees a user holds at
// most one reaction per post.
type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Status     string     `gorm:"size:16;default:'draft';index" json:"status"`
	Tags       string     `gorm:"type:text" json:"-"`   // JSON array of tag names
	Images     string     `gorm:"type:text" json:"-"`   // JSON array of image URLs
	Views      int64      `gorm:"not null;default:0" json:"views"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	User       User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Categories []Category `gorm:"many2many:post_categories;" json:"categories"`
}

// PostReaction records a like or dislike by a user on a post. The unique
// (post_id, user_id) index is what keeps likes and dislikes mutually
// exclusive for a given user.
type PostReaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;uniqueIndex:idx_post_user;not null" json:"post_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_post_user;not null" json:"user_id"`
	Kind      string    `gorm:"size:8;not null" json:"kind"` // "like" or "dislike"
	CreatedAt time.Time `json:"created_at"`
}

// Reaction kinds.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// PostView stores per-day view counts for a post, upserted on each
// tracked view. The lifetime counter lives on Post.Views.
type PostView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;index:idx_view_post_date,unique;not null" json:"post_id"`
	Date      time.Time `gorm:"index:idx_view_post_date,unique;type:date;not null" json:"date"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
