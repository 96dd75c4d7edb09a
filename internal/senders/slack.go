package senders

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/mentionpulse/alert-engine/internal/format"
)

// SlackSender posts a formatted message to a Slack incoming webhook URL.
type SlackSender struct {
	client *resty.Client
}

// NewSlackSender creates a Slack webhook sender.
func NewSlackSender(timeout time.Duration) *SlackSender {
	return &SlackSender{
		client: resty.New().SetTimeout(timeout),
	}
}

// Send posts the message and normalizes the outcome. A non-2xx response is
// always a failure.
func (s *SlackSender) Send(ctx context.Context, webhookURL string, message *format.SlackMessage) Outcome {
	if webhookURL == "" {
		logrus.Debug("Slack alert has no webhook URL, skipping channel")
		return skipped()
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(webhookURL)

	if err != nil {
		logrus.Errorf("Slack send failed: %v", err)
		return failure(fmt.Sprintf("slack request failed: %v", err))
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		logrus.Errorf("Slack webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
		return failure(fmt.Sprintf("slack webhook returned status %d", resp.StatusCode()))
	}

	return success()
}
