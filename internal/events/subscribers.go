package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/emberhollow/hearth/internal/cleanup"
	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/internal/notification"

	"github.com/asaskevich/EventBus"
	"github.com/rs/zerolog"
)

type Subscriber struct {
	log             zerolog.Logger
	eventbus        EventBus.Bus
	notificationSvc notification.Service
}

// NewSubscribers wires the event bus topics to the notification service.
func NewSubscribers(log logger.Logger, eventbus EventBus.Bus, notificationSvc notification.Service) Subscriber {
	s := Subscriber{
		log:             log.With().Str("module", "events").Logger(),
		eventbus:        eventbus,
		notificationSvc: notificationSvc,
	}

	s.Register()

	return s
}

func (s Subscriber) Register() {
	if err := s.eventbus.Subscribe(cleanup.TopicCleanupCompleted, s.cleanupCompleted); err != nil {
		s.log.Error().Err(err).Str("topic", cleanup.TopicCleanupCompleted).Msg("could not subscribe to topic")
	}
	if err := s.eventbus.Subscribe(cleanup.TopicIntegrityViolation, s.integrityViolation); err != nil {
		s.log.Error().Err(err).Str("topic", cleanup.TopicIntegrityViolation).Msg("could not subscribe to topic")
	}
}

func (s Subscriber) cleanupCompleted(event cleanup.CompletedEvent) {
	s.log.Trace().Msgf("events: cleanup completed for kind %q by user %q", event.Kind, event.UserID)

	notificationEvent := domain.NotificationEventCleanupSuccess
	subject := fmt.Sprintf("Cleanup of %s finished", event.Kind)
	if !event.Result.Success {
		notificationEvent = domain.NotificationEventCleanupFailed
		subject = fmt.Sprintf("Cleanup of %s failed", event.Kind)
	}

	s.notificationSvc.Send(notificationEvent, domain.NotificationPayload{
		Subject:   subject,
		Message:   event.Result.Message,
		Event:     notificationEvent,
		Timestamp: time.Now(),
	})
}

func (s Subscriber) integrityViolation(result domain.IntegrityValidationResult) {
	s.log.Trace().Msgf("events: integrity violation with %d issue(s)", len(result.Issues))

	s.notificationSvc.Send(domain.NotificationEventIntegrityViolation, domain.NotificationPayload{
		Subject:   "Data integrity violation detected",
		Message:   strings.Join(result.Issues, "; "),
		Event:     domain.NotificationEventIntegrityViolation,
		Timestamp: result.Timestamp,
	})
}
