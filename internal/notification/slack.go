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

type SlackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Attachments []SlackAttachment `json:"attachments"`
}

type SlackAttachment struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Color string `json:"color"`
	Ts    int64  `json:"ts"`
}

type slackSender struct {
	log      zerolog.Logger
	settings domain.Notification

	httpClient *http.Client
}

func NewSlackSender(log zerolog.Logger, settings domain.Notification) domain.NotificationSender {
	return &slackSender{
		log:      log.With().Str("sender", "slack").Logger(),
		settings: settings,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

func (s *slackSender) Send(event domain.NotificationEvent, payload domain.NotificationPayload) error {
	m := SlackMessage{
		Channel: s.settings.Channel,
		Attachments: []SlackAttachment{
			{
				Title: payload.Subject,
				Text:  payload.Message,
				Color: attachmentColor(event),
				Ts:    time.Now().Unix(),
			},
		},
	}

	jsonData, err := json.Marshal(m)
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

	if res.StatusCode != http.StatusOK {
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return errors.Wrapf(err, "could not read body for event: %v payload: %v", event, payload)
		}

		return fmt.Errorf("unexpected status: %v body: %v", res.StatusCode, string(body))
	}

	s.log.Debug().Msg("notification successfully sent to slack")

	return nil
}

func (s *slackSender) CanSend(event domain.NotificationEvent) bool {
	if s.settings.Enabled && s.isEnabledEvent(event) {
		return true
	}
	return false
}

func (s *slackSender) isEnabledEvent(event domain.NotificationEvent) bool {
	for _, e := range s.settings.Events {
		if e == string(event) {
			return true
		}
	}
	return false
}

func attachmentColor(event domain.NotificationEvent) string {
	switch event {
	case domain.NotificationEventCleanupSuccess:
		return "good"
	case domain.NotificationEventCleanupFailed, domain.NotificationEventIntegrityViolation:
		return "danger"
	case domain.NotificationEventCleanupStarted:
		return "warning"
	default:
		return "#808080"
	}
}
