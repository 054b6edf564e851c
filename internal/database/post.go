package database

import (
	"context"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type PostRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewPostRepo(log logger.Logger, db *DB) domain.PostRepo {
	return &PostRepo{
		log: log.With().Str("repo", "post").Logger(),
		db:  db,
	}
}

func (r *PostRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.Get().WithContext(ctx).Model(&domain.Post{}).Count(&count)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Msg("Failed to count posts")
		return 0, errors.Wrap(result.Error, "failed to count posts")
	}

	return count, nil
}

// DeleteAllWithLikes removes all likes, then all posts, in one transaction.
// Children go first so no observer ever sees a like without its post, and
// likes already orphaned before the pass are swept too: a successful pass
// leaves zero like orphans behind.
func (r *PostRepo) DeleteAllWithLikes(ctx context.Context) (int64, error) {
	var deletedPosts int64

	err := r.db.Get().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likeResult := tx.Where("1 = 1").Delete(&domain.PostLike{})
		if likeResult.Error != nil {
			return errors.Wrap(likeResult.Error, "failed to delete post likes")
		}

		postResult := tx.Where("1 = 1").Delete(&domain.Post{})
		if postResult.Error != nil {
			return errors.Wrap(postResult.Error, "failed to delete posts")
		}

		deletedPosts = postResult.RowsAffected
		r.log.Debug().Int64("posts", deletedPosts).Int64("likes", likeResult.RowsAffected).Msg("Deleted posts and referencing likes")
		return nil
	})
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to delete posts with likes")
		return 0, err
	}

	return deletedPosts, nil
}

type PostLikeRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewPostLikeRepo(log logger.Logger, db *DB) domain.PostLikeRepo {
	return &PostLikeRepo{
		log: log.With().Str("repo", "post_like").Logger(),
		db:  db,
	}
}

func (r *PostLikeRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.Get().WithContext(ctx).Model(&domain.PostLike{}).Count(&count)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Msg("Failed to count post likes")
		return 0, errors.Wrap(result.Error, "failed to count post likes")
	}

	return count, nil
}

// CountOrphaned counts likes whose referenced post no longer exists.
func (r *PostLikeRepo) CountOrphaned(ctx context.Context) (int64, error) {
	var count int64
	db := r.db.Get().WithContext(ctx)

	result := db.Model(&domain.PostLike{}).
		Where("post_id NOT IN (?)", db.Session(&gorm.Session{NewDB: true}).Model(&domain.Post{}).Select("id")).
		Count(&count)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Msg("Failed to count orphaned post likes")
		return 0, errors.Wrap(result.Error, "failed to count orphaned post likes")
	}

	return count, nil
}
