package domain

import (
	"context"
	"time"
)

type GroupRepo interface {
	FindByID(ctx context.Context, id string) (*Group, error)
	FindByName(ctx context.Context, name string) (*Group, error)
	List(ctx context.Context) ([]Group, error)
	Store(ctx context.Context, group Group) (*Group, error)
	Update(ctx context.Context, group Group) (*Group, error)
	Count(ctx context.Context) (int64, error)
	// DeleteAllWithMemberships removes every membership (including ones
	// already orphaned) and then every group, inside one transaction. It
	// returns the number of group rows removed.
	DeleteAllWithMemberships(ctx context.Context) (int64, error)
}

type GroupMembershipRepo interface {
	Count(ctx context.Context) (int64, error)
	// CountOrphanedByGroup counts memberships whose group no longer exists.
	CountOrphanedByGroup(ctx context.Context) (int64, error)
	// CountOrphanedByUser counts memberships whose user no longer exists.
	CountOrphanedByUser(ctx context.Context) (int64, error)
}

// Group is a shared community space. Groups are created by the groups
// service after an authorization check and deleted only through the
// cleanup service's group path.
type Group struct {
	ID           string    `json:"id" gorm:"primaryKey;column:id"`
	Name         string    `json:"name" gorm:"column:name;uniqueIndex" validate:"required,min=1,max=120"`
	Description  string    `json:"description" gorm:"column:description" validate:"max=2000"`
	ExternalLink string    `json:"external_link,omitempty" gorm:"column:external_link" validate:"omitempty,url"`
	MemberCount  int       `json:"member_count" gorm:"column:member_count"`
	CreatedBy    string    `json:"created_by" gorm:"column:created_by;index"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupMembership is the join between users and groups. Exactly one row per
// (user_id, group_id). Its lifecycle is driven entirely by cleanup: a
// membership must never outlive the group or user it references.
type GroupMembership struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	GroupID   string    `json:"group_id" gorm:"column:group_id;index:idx_membership_group_user,unique"`
	UserID    string    `json:"user_id" gorm:"column:user_id;index:idx_membership_group_user,unique"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (GroupMembership) TableName() string {
	return "group_memberships"
}
