package domain

import (
	"context"
	"time"
)

type UserRepo interface {
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Store(ctx context.Context, user User) error
}

// User is owned by the authentication collaborator. This service reads it to
// resolve callers and to detect memberships pointing at deleted accounts; it
// never derives privilege from the record itself, only from role assignments.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;column:id"`
	DisplayName  string    `json:"display_name" gorm:"column:display_name"`
	APITokenHash string    `json:"-" gorm:"column:api_token_hash"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
