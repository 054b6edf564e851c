package database

import (
	"context"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type NotificationRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewNotificationRepo(log logger.Logger, db *DB) domain.NotificationRepo {
	return &NotificationRepo{
		log: log.With().Str("repo", "notification").Logger(),
		db:  db,
	}
}

// List retrieves all notification channels, ordered by name.
func (r *NotificationRepo) List(ctx context.Context) ([]domain.Notification, error) {
	var notifications []domain.Notification
	result := r.db.Get().WithContext(ctx).Order("name asc").Find(&notifications)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Msg("Failed to list notifications")
		return nil, errors.Wrap(result.Error, "failed to list notifications")
	}

	return notifications, nil
}

func (r *NotificationRepo) FindByID(ctx context.Context, id int) (*domain.Notification, error) {
	var notification domain.Notification
	result := r.db.Get().WithContext(ctx).First(&notification, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error().Err(result.Error).Int("id", id).Msg("Failed to find notification by id")
		return nil, errors.Wrap(result.Error, "failed to find notification by id")
	}

	return &notification, nil
}

func (r *NotificationRepo) Store(ctx context.Context, notification domain.Notification) (*domain.Notification, error) {
	result := r.db.Get().WithContext(ctx).Create(&notification)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Str("name", notification.Name).Msg("Failed to store notification")
		return nil, errors.Wrap(result.Error, "failed to store notification")
	}

	return &notification, nil
}

func (r *NotificationRepo) Update(ctx context.Context, notification domain.Notification) (*domain.Notification, error) {
	result := r.db.Get().WithContext(ctx).Save(&notification)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Int("id", notification.ID).Msg("Failed to update notification")
		return nil, errors.Wrap(result.Error, "failed to update notification")
	}

	return &notification, nil
}

func (r *NotificationRepo) Delete(ctx context.Context, notificationID int) error {
	result := r.db.Get().WithContext(ctx).Delete(&domain.Notification{}, notificationID)

	if result.Error != nil {
		r.log.Error().Err(result.Error).Int("id", notificationID).Msg("Failed to delete notification")
		return errors.Wrap(result.Error, "failed to delete notification")
	}

	if result.RowsAffected == 0 {
		return errors.Wrap(gorm.ErrRecordNotFound, "notification not found for delete")
	}

	r.log.Debug().Int("id", notificationID).Msg("Successfully deleted notification")
	return nil
}
