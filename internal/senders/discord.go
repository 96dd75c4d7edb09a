package senders

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/mentionpulse/alert-engine/internal/format"
	"github.com/mentionpulse/alert-engine/internal/models"
)

// discordAPIBase is the Bot API endpoint for posting into a channel.
const discordAPIBase = "https://discord.com/api/v10"

// BotError is the typed error returned by Discord bot sends, carrying the
// API status code so callers can distinguish auth problems from transient
// failures.
type BotError struct {
	StatusCode int
	Message    string
}

func (e *BotError) Error() string {
	return fmt.Sprintf("discord bot API returned status %d: %s", e.StatusCode, e.Message)
}

// DiscordWebhookSender posts a formatted message to a Discord webhook URL.
type DiscordWebhookSender struct {
	client *resty.Client
}

// NewDiscordWebhookSender creates a Discord webhook sender.
func NewDiscordWebhookSender(timeout time.Duration) *DiscordWebhookSender {
	return &DiscordWebhookSender{
		client: resty.New().SetTimeout(timeout),
	}
}

// Send posts the message and normalizes the outcome.
func (s *DiscordWebhookSender) Send(ctx context.Context, webhookURL string, message *format.DiscordMessage) Outcome {
	if webhookURL == "" {
		logrus.Debug("Discord alert has no webhook URL, skipping channel")
		return skipped()
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(webhookURL)

	if err != nil {
		logrus.Errorf("Discord send failed: %v", err)
		return failure(fmt.Sprintf("discord request failed: %v", err))
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		logrus.Errorf("Discord webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
		return failure(fmt.Sprintf("discord webhook returned status %d", resp.StatusCode()))
	}

	return success()
}

// IntegrationLookup returns per-user third-party connection state.
type IntegrationLookup interface {
	GetIntegration(ctx context.Context, userID, provider string) (*models.Integration, error)
}

// DiscordBotSender posts via a bot token into a channel ID, used when the
// user has connected a Discord integration rather than pasting a webhook URL.
type DiscordBotSender struct {
	client       *resty.Client
	integrations IntegrationLookup
	apiBase      string
}

// NewDiscordBotSender creates a bot-token sender backed by the given
// integration lookup.
func NewDiscordBotSender(timeout time.Duration, integrations IntegrationLookup) *DiscordBotSender {
	return &DiscordBotSender{
		client:       resty.New().SetTimeout(timeout),
		integrations: integrations,
		apiBase:      discordAPIBase,
	}
}

// Send posts the message into channelID on behalf of userID's integration.
// A disconnected integration skips the channel without counting as a
// failure; API errors surface both in the outcome and as a typed *BotError.
func (s *DiscordBotSender) Send(ctx context.Context, userID, channelID string, message *format.DiscordMessage) (Outcome, error) {
	if channelID == "" {
		logrus.Debugf("Discord alert for user %s has no channel ID, skipping channel", userID)
		return skipped(), nil
	}

	integration, err := s.integrations.GetIntegration(ctx, userID, "discord")
	if err != nil {
		return failure(fmt.Sprintf("integration lookup failed: %v", err)), nil
	}

	if integration == nil || !integration.Connected {
		logrus.Debugf("Discord integration not connected for user %s, skipping channel", userID)
		return skipped(), nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bot "+integration.BotToken).
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(fmt.Sprintf("%s/channels/%s/messages", s.apiBase, channelID))

	if err != nil {
		logrus.Errorf("Discord bot send failed: %v", err)
		return failure(fmt.Sprintf("discord bot request failed: %v", err)), nil
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		botErr := &BotError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
		logrus.Errorf("Discord bot send rejected: %v", botErr)
		return failure(botErr.Error()), botErr
	}

	return success(), nil
}
