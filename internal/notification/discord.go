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

type DiscordMessage struct {
	Content interface{}    `json:"content"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
}

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedColor int

const (
	GREEN  EmbedColor = 5763719
	RED    EmbedColor = 15548997
	ORANGE EmbedColor = 15105570
	GRAY   EmbedColor = 9807270
)

type discordSender struct {
	log      zerolog.Logger
	settings domain.Notification

	httpClient *http.Client
}

func NewDiscordSender(log zerolog.Logger, settings domain.Notification) domain.NotificationSender {
	return &discordSender{
		log:      log.With().Str("sender", "discord").Logger(),
		settings: settings,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

func (s *discordSender) Send(event domain.NotificationEvent, payload domain.NotificationPayload) error {
	m := DiscordMessage{
		Content: nil,
		Embeds: []DiscordEmbed{
			{
				Title:       payload.Subject,
				Description: payload.Message,
				Color:       int(embedColor(event)),
				Timestamp:   time.Now(),
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

	if res.StatusCode != http.StatusNoContent && res.StatusCode != http.StatusOK {
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return errors.Wrapf(err, "could not read body for event: %v payload: %v", event, payload)
		}

		return fmt.Errorf("unexpected status: %v body: %v", res.StatusCode, string(body))
	}

	s.log.Debug().Msg("notification successfully sent to discord")

	return nil
}

func (s *discordSender) CanSend(event domain.NotificationEvent) bool {
	if s.settings.Enabled && s.isEnabledEvent(event) {
		return true
	}
	return false
}

func (s *discordSender) isEnabledEvent(event domain.NotificationEvent) bool {
	for _, e := range s.settings.Events {
		if e == string(event) {
			return true
		}
	}
	return false
}

func embedColor(event domain.NotificationEvent) EmbedColor {
	switch event {
	case domain.NotificationEventCleanupSuccess:
		return GREEN
	case domain.NotificationEventCleanupFailed, domain.NotificationEventIntegrityViolation:
		return RED
	case domain.NotificationEventCleanupStarted:
		return ORANGE
	default:
		return GRAY
	}
}
