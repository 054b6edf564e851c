package database

import (
	"context"
	"time"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/pkg/errors"
	"github.com/rs/zerolog"
)

// RoleAssignmentRepo reads role assignments. Granting and revoking is owned
// by an external role-management process; this repo never writes.
type RoleAssignmentRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewRoleAssignmentRepo(log logger.Logger, db *DB) domain.RoleAssignmentRepo {
	return &RoleAssignmentRepo{
		log: log.With().Str("repo", "role_assignment").Logger(),
		db:  db,
	}
}

func (r *RoleAssignmentRepo) ListActive(ctx context.Context, userID string, now time.Time) ([]domain.RoleAssignment, error) {
	var assignments []domain.RoleAssignment
	result := r.db.Get().WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Find(&assignments)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Str("user_id", userID).Msg("Failed to list active role assignments")
		return nil, errors.Wrap(result.Error, "failed to list active role assignments")
	}

	return assignments, nil
}
