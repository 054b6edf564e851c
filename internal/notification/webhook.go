package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/pkg/errors"

	"github.com/rs/zerolog"
)

func errInvalidType(t domain.NotificationType) error {
	return errors.New("unsupported notification type: %v", t)
}

type webhookSender struct {
	log      zerolog.Logger
	settings domain.Notification

	httpClient *http.Client
}

// NewWebhookSender posts the raw payload as JSON to an arbitrary endpoint.
func NewWebhookSender(log zerolog.Logger, settings domain.Notification) domain.NotificationSender {
	return &webhookSender{
		log:      log.With().Str("sender", "webhook").Logger(),
		settings: settings,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

type webhookBody struct {
	Event     domain.NotificationEvent `json:"event"`
	Subject   string                   `json:"subject"`
	Message   string                   `json:"message"`
	Timestamp time.Time                `json:"timestamp"`
}

func (s *webhookSender) Send(event domain.NotificationEvent, payload domain.NotificationPayload) error {
	body := webhookBody{
		Event:     event,
		Subject:   payload.Subject,
		Message:   payload.Message,
		Timestamp: payload.Timestamp,
	}
	if body.Timestamp.IsZero() {
		body.Timestamp = time.Now()
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "could not marshal json request for event: %v payload: %v", event, payload)
	}

	req, err := http.NewRequest(http.MethodPost, s.settings.Webhook, bytes.NewBuffer(jsonData))
	if err != nil {
		return errors.Wrapf(err, "could not create request for event: %v payload: %v", event, payload)
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "client request error for event: %v payload: %v", event, payload)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusMultipleChoices {
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return errors.Wrapf(err, "could not read body for event: %v payload: %v", event, payload)
		}

		return fmt.Errorf("unexpected status: %v body: %v", res.StatusCode, string(body))
	}

	s.log.Debug().Msg("notification successfully sent to webhook endpoint")

	return nil
}

func (s *webhookSender) CanSend(event domain.NotificationEvent) bool {
	if s.settings.Enabled && s.isEnabledEvent(event) {
		return true
	}
	return false
}

func (s *webhookSender) isEnabledEvent(event domain.NotificationEvent) bool {
	for _, e := range s.settings.Events {
		if e == string(event) {
			return true
		}
	}
	return false
}
