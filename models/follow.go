package models

import "time"

// Follow is a directed edge in the social graph: FollowerID follows
// FolloweeID. Storing the relation as a single row keeps both sides of
// "A follows B" consistent without a cross-document transaction; the
// unique pair index makes the operation idempotent.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"index;uniqueIndex:idx_follower_followee;not null" json:"follower_id"`
	FolloweeID uint      `gorm:"index;uniqueIndex:idx_follower_followee;not null" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
