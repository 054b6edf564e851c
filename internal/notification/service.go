package notification

import (
	"context"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"

	"github.com/rs/zerolog"
)

type Service interface {
	List(ctx context.Context) ([]domain.Notification, error)
	FindByID(ctx context.Context, id int) (*domain.Notification, error)
	Store(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	Update(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	Delete(ctx context.Context, id int) error
	Send(event domain.NotificationEvent, payload domain.NotificationPayload)
	Test(ctx context.Context, n domain.Notification) error
}

type service struct {
	log  zerolog.Logger
	repo domain.NotificationRepo

	senders []domain.NotificationSender
}

func NewService(log logger.Logger, repo domain.NotificationRepo) Service {
	s := &service{
		log:  log.With().Str("module", "notification").Logger(),
		repo: repo,
	}

	s.registerSenders()

	return s
}

// registerSenders builds one sender per enabled channel definition.
// Called again after Store/Update/Delete so the sender set tracks the store.
func (s *service) registerSenders() {
	ctx := context.Background()

	notifications, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("could not load notification channels")
		return
	}

	senders := make([]domain.NotificationSender, 0, len(notifications))
	for _, n := range notifications {
		if !n.Enabled {
			continue
		}

		switch n.Type {
		case domain.NotificationTypeDiscord:
			senders = append(senders, NewDiscordSender(s.log, n))
		case domain.NotificationTypeSlack:
			senders = append(senders, NewSlackSender(s.log, n))
		case domain.NotificationTypeWebhook:
			senders = append(senders, NewWebhookSender(s.log, n))
		default:
			s.log.Warn().Str("type", string(n.Type)).Int("id", n.ID).Msg("unknown notification channel type")
		}
	}

	s.senders = senders
}

func (s *service) List(ctx context.Context) ([]domain.Notification, error) {
	return s.repo.List(ctx)
}

func (s *service) FindByID(ctx context.Context, id int) (*domain.Notification, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Store(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	stored, err := s.repo.Store(ctx, n)
	if err != nil {
		return nil, err
	}

	s.registerSenders()

	return stored, nil
}

func (s *service) Update(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	updated, err := s.repo.Update(ctx, n)
	if err != nil {
		return nil, err
	}

	s.registerSenders()

	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.registerSenders()

	return nil
}

// Send fans the event out to every sender subscribed to it. Delivery is
// best effort and never blocks the caller.
func (s *service) Send(event domain.NotificationEvent, payload domain.NotificationPayload) {
	if len(s.senders) > 0 {
		s.log.Debug().Msgf("sending notifications for %v", string(event))
	}

	go func() {
		for _, sender := range s.senders {
			if sender.CanSend(event) {
				if err := sender.Send(event, payload); err != nil {
					s.log.Error().Err(err).Msgf("could not send notification for %v", string(event))
				}
			}
		}
	}()
}

func (s *service) Test(ctx context.Context, n domain.Notification) error {
	var sender domain.NotificationSender

	switch n.Type {
	case domain.NotificationTypeDiscord:
		sender = NewDiscordSender(s.log, n)
	case domain.NotificationTypeSlack:
		sender = NewSlackSender(s.log, n)
	case domain.NotificationTypeWebhook:
		sender = NewWebhookSender(s.log, n)
	default:
		return errInvalidType(n.Type)
	}

	return sender.Send(domain.NotificationEventTest, domain.NotificationPayload{
		Subject: "Test notification",
		Message: "This is a test notification from Hearth.",
		Event:   domain.NotificationEventTest,
	})
}
