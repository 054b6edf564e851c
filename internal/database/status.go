package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type CleanupStatusRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewCleanupStatusRepo(log logger.Logger, db *DB) domain.CleanupStatusRepo {
	return &CleanupStatusRepo{
		log: log.With().Str("repo", "cleanup_status").Logger(),
		db:  db,
	}
}

// Snapshot runs the four counts inside one read-only transaction. Slight
// staleness under concurrent writers is acceptable; the counts are still
// taken from a single logical snapshot.
func (r *CleanupStatusRepo) Snapshot(ctx context.Context) (*domain.CleanupStatus, error) {
	status := &domain.CleanupStatus{}

	// the sqlite driver rejects read-only transactions; sqlite's
	// single-writer model gives a consistent view regardless
	txOpts := &sql.TxOptions{}
	if r.db.Driver == "postgres" {
		txOpts.ReadOnly = true
	}

	err := r.db.Get().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res := tx.Model(&domain.Post{}).Count(&status.PostsCount); res.Error != nil {
			return errors.Wrap(res.Error, "failed to count posts")
		}
		if res := tx.Model(&domain.Group{}).Count(&status.GroupsCount); res.Error != nil {
			return errors.Wrap(res.Error, "failed to count groups")
		}
		if res := tx.Model(&domain.PostLike{}).Count(&status.PostLikesCount); res.Error != nil {
			return errors.Wrap(res.Error, "failed to count post likes")
		}
		if res := tx.Model(&domain.GroupMembership{}).Count(&status.GroupMembershipsCount); res.Error != nil {
			return errors.Wrap(res.Error, "failed to count group memberships")
		}
		return nil
	}, txOpts)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to snapshot cleanup status counts")
		return nil, err
	}

	status.LastUpdated = time.Now().UTC()
	return status, nil
}
