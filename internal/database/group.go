package database

import (
	"context"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type GroupRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewGroupRepo(log logger.Logger, db *DB) domain.GroupRepo {
	return &GroupRepo{
		log: log.With().Str("repo", "group").Logger(),
		db:  db,
	}
}

func (r *GroupRepo) FindByID(ctx context.Context, id string) (*domain.Group, error) {
	var group domain.Group
	result := r.db.Get().WithContext(ctx).Where("id = ?", id).First(&group)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error().Err(result.Error).Str("group_id", id).Msg("Failed to find group by id")
		return nil, errors.Wrap(result.Error, "failed to find group by id")
	}

	return &group, nil
}

func (r *GroupRepo) FindByName(ctx context.Context, name string) (*domain.Group, error) {
	var group domain.Group
	result := r.db.Get().WithContext(ctx).Where("name = ?", name).First(&group)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error().Err(result.Error).Str("name", name).Msg("Failed to find group by name")
		return nil, errors.Wrap(result.Error, "failed to find group by name")
	}

	return &group, nil
}

func (r *GroupRepo) List(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	result := r.db.Get().WithContext(ctx).Order("name ASC").Find(&groups)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Msg("Failed to list groups")
		return nil, errors.Wrap(result.Error, "failed to list groups")
	}

	return groups, nil
}

func (r *GroupRepo) Store(ctx context.Context, group domain.Group) (*domain.Group, error) {
	result := r.db.Get().WithContext(ctx).Create(&group)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Str("name", group.Name).Msg("Failed to store group")
		return nil, errors.Wrap(result.Error, "failed to store group")
	}

	r.log.Debug().Str("group_id", group.ID).Str("name", group.Name).Msg("Successfully stored group")
	return &group, nil
}

func (r *GroupRepo) Update(ctx context.Context, group domain.Group) (*domain.Group, error) {
	result := r.db.Get().WithContext(ctx).
		Model(&domain.Group{}).
		Where("id = ?", group.ID).
		Updates(map[string]interface{}{
			"name":          group.Name,
			"description":   group.Description,
			"external_link": group.ExternalLink,
			"is_active":     group.IsActive,
		})

	if result.Error != nil {
		r.log.Error().Err(result.Error).Str("group_id", group.ID).Msg("Failed to update group")
		return nil, errors.Wrap(result.Error, "failed to update group")
	}

	if result.RowsAffected == 0 {
		r.log.Warn().Str("group_id", group.ID).Msg("Update affected 0 rows, group might not exist")
		return nil, errors.Wrap(gorm.ErrRecordNotFound, "group not found for update")
	}

	return &group, nil
}

func (r *GroupRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.Get().WithContext(ctx).Model(&domain.Group{}).Count(&count)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Msg("Failed to count groups")
		return 0, errors.Wrap(result.Error, "failed to count groups")
	}

	return count, nil
}

// DeleteAllWithMemberships removes all memberships, then all groups, in one
// transaction. Children go first so no observer ever sees a membership
// without its group, and memberships already orphaned before the pass are
// swept too: a successful pass leaves zero membership orphans behind.
func (r *GroupRepo) DeleteAllWithMemberships(ctx context.Context) (int64, error) {
	var deletedGroups int64

	err := r.db.Get().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		membershipResult := tx.Where("1 = 1").Delete(&domain.GroupMembership{})
		if membershipResult.Error != nil {
			return errors.Wrap(membershipResult.Error, "failed to delete group memberships")
		}

		groupResult := tx.Where("1 = 1").Delete(&domain.Group{})
		if groupResult.Error != nil {
			return errors.Wrap(groupResult.Error, "failed to delete groups")
		}

		deletedGroups = groupResult.RowsAffected
		r.log.Debug().Int64("groups", deletedGroups).Int64("memberships", membershipResult.RowsAffected).Msg("Deleted groups and referencing memberships")
		return nil
	})
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to delete groups with memberships")
		return 0, err
	}

	return deletedGroups, nil
}

type GroupMembershipRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewGroupMembershipRepo(log logger.Logger, db *DB) domain.GroupMembershipRepo {
	return &GroupMembershipRepo{
		log: log.With().Str("repo", "group_membership").Logger(),
		db:  db,
	}
}

func (r *GroupMembershipRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.Get().WithContext(ctx).Model(&domain.GroupMembership{}).Count(&count)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Msg("Failed to count group memberships")
		return 0, errors.Wrap(result.Error, "failed to count group memberships")
	}

	return count, nil
}

// CountOrphanedByGroup counts memberships whose referenced group no longer exists.
func (r *GroupMembershipRepo) CountOrphanedByGroup(ctx context.Context) (int64, error) {
	var count int64
	db := r.db.Get().WithContext(ctx)

	result := db.Model(&domain.GroupMembership{}).
		Where("group_id NOT IN (?)", db.Session(&gorm.Session{NewDB: true}).Model(&domain.Group{}).Select("id")).
		Count(&count)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Msg("Failed to count memberships orphaned by group")
		return 0, errors.Wrap(result.Error, "failed to count memberships orphaned by group")
	}

	return count, nil
}

// CountOrphanedByUser counts memberships whose referenced user no longer exists.
func (r *GroupMembershipRepo) CountOrphanedByUser(ctx context.Context) (int64, error) {
	var count int64
	db := r.db.Get().WithContext(ctx)

	result := db.Model(&domain.GroupMembership{}).
		Where("user_id NOT IN (?)", db.Session(&gorm.Session{NewDB: true}).Model(&domain.User{}).Select("id")).
		Count(&count)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Msg("Failed to count memberships orphaned by user")
		return 0, errors.Wrap(result.Error, "failed to count memberships orphaned by user")
	}

	return count, nil
}
