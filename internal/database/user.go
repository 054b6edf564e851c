package database

import (
	"context"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// UserRepo reads user records owned by the authentication collaborator.
// Store exists for seeding and for the token boundary; the lifecycle
// of these rows is otherwise external.
type UserRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewUserRepo(log logger.Logger, db *DB) domain.UserRepo {
	return &UserRepo{
		log: log.With().Str("repo", "user").Logger(),
		db:  db,
	}
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.Get().WithContext(ctx).Model(&domain.User{}).Count(&count)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Msg("Failed to count users")
		return 0, errors.Wrap(result.Error, "failed to count users")
	}

	return count, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	result := r.db.Get().WithContext(ctx).Where("id = ?", id).First(&user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			// unknown user is not an application error, absence is the answer
			return nil, nil
		}
		r.log.Error().Err(result.Error).Str("user_id", id).Msg("Failed to find user by id")
		return nil, errors.Wrap(result.Error, "failed to find user by id")
	}

	return &user, nil
}

func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	result := r.db.Get().WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Limit(1).Count(&count)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Str("user_id", id).Msg("Failed to check user existence")
		return false, errors.Wrap(result.Error, "failed to check user existence")
	}

	return count > 0, nil
}

func (r *UserRepo) Store(ctx context.Context, user domain.User) error {
	result := r.db.Get().WithContext(ctx).Create(&user)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Str("user_id", user.ID).Msg("Failed to store user")
		return errors.Wrap(result.Error, "failed to store user")
	}

	r.log.Debug().Str("user_id", user.ID).Msg("Successfully stored user")
	return nil
}
