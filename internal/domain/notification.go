package domain

import (
	"context"
	"time"
)

type NotificationRepo interface {
	List(ctx context.Context) ([]Notification, error)
	FindByID(ctx context.Context, id int) (*Notification, error)
	Store(ctx context.Context, notification Notification) (*Notification, error)
	Update(ctx context.Context, notification Notification) (*Notification, error)
	Delete(ctx context.Context, notificationID int) error
}

type NotificationSender interface {
	Send(event NotificationEvent, payload NotificationPayload) error
	CanSend(event NotificationEvent) bool
}

// Notification represents a configured notification channel for operational
// events such as cleanup completion or integrity violations.
type Notification struct {
	ID        int              `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	Name      string           `json:"name" gorm:"column:name"`
	Type      NotificationType `json:"type" gorm:"column:type"`
	Enabled   bool             `json:"enabled" gorm:"column:enabled"`
	Events    []string         `json:"events" gorm:"column:events;type:text;serializer:json"`
	Webhook   string           `json:"webhook" gorm:"column:webhook"`
	Channel   string           `json:"channel" gorm:"column:channel"`
	CreatedAt time.Time        `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

type NotificationPayload struct {
	Subject   string
	Message   string
	Event     NotificationEvent
	Timestamp time.Time
}

type NotificationType string

const (
	NotificationTypeDiscord NotificationType = "DISCORD"
	NotificationTypeSlack   NotificationType = "SLACK"
	NotificationTypeWebhook NotificationType = "WEBHOOK"
)

type NotificationEvent string

const (
	NotificationEventCleanupStarted     NotificationEvent = "CLEANUP_STARTED"
	NotificationEventCleanupSuccess     NotificationEvent = "CLEANUP_SUCCESS"
	NotificationEventCleanupFailed      NotificationEvent = "CLEANUP_FAILED"
	NotificationEventIntegrityViolation NotificationEvent = "INTEGRITY_VIOLATION"
	NotificationEventTest               NotificationEvent = "TEST"
)
