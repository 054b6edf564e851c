package domain

import (
	"context"
	"time"
)

type PostRepo interface {
	Count(ctx context.Context) (int64, error)
	// DeleteAllWithLikes removes every like (including ones already orphaned)
	// and then every post, inside one transaction. It returns the number of
	// post rows removed.
	DeleteAllWithLikes(ctx context.Context) (int64, error)
}

type PostLikeRepo interface {
	Count(ctx context.Context) (int64, error)
	// CountOrphaned counts likes whose post no longer exists.
	CountOrphaned(ctx context.Context) (int64, error)
}

// Post is content published inside a group.
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	GroupID   string    `json:"group_id" gorm:"column:group_id;index"`
	AuthorID  string    `json:"author_id" gorm:"column:author_id;index"`
	Body      string    `json:"body" gorm:"column:body"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Post) TableName() string {
	return "posts"
}

// PostLike is a user's reaction to a post. One row per (post_id, user_id).
type PostLike struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	PostID    string    `json:"post_id" gorm:"column:post_id;index:idx_like_post_user,unique"`
	UserID    string    `json:"user_id" gorm:"column:user_id;index:idx_like_post_user,unique"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (PostLike) TableName() string {
	return "post_likes"
}
