package models

import "time"

// Channel identifies a notification destination type.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelSlack   Channel = "slack"
	ChannelDiscord Channel = "discord"
	ChannelWebhook Channel = "webhook"
	ChannelInApp   Channel = "in_app"
)

// Frequency controls how often an alert's digest window closes.
type Frequency string

const (
	FrequencyInstant Frequency = "instant"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Monitor is a user's keyword/topic tracker. It owns Alerts and produces
// Results; the delivery engine only reads it.
type Monitor struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Keyword  string `json:"keyword"`
	IsActive bool   `json:"is_active"`
}

// Alert is a single channel+frequency notification rule bound to one Monitor.
// Destination holds an email address, webhook URL, or Discord channel ID
// depending on the channel.
type Alert struct {
	ID          string    `json:"id"`
	MonitorID   string    `json:"monitor_id"`
	Channel     Channel   `json:"channel"`
	Frequency   Frequency `json:"frequency"`
	Destination string    `json:"destination"`
	IsActive    bool      `json:"is_active"`
}

// Result is one discovered item (post, review, thread) belonging to a Monitor.
// LastSentInDigestAt is the dedup marker: set at most once per digest cycle,
// monotonically non-decreasing, written only by the delivery engine.
type Result struct {
	ID                 string     `json:"id"`
	MonitorID          string     `json:"monitor_id"`
	Title              string     `json:"title"`
	URL                string     `json:"url"`
	Platform           string     `json:"platform"`
	Author             string     `json:"author"`
	Sentiment          string     `json:"sentiment"` // "positive", "negative", "neutral"
	Category           string     `json:"category"`  // see format.CategoryStyles
	Summary            string     `json:"summary"`   // AI-generated summary
	EngagementScore    int        `json:"engagement_score"`
	PostedAt           *time.Time `json:"posted_at,omitempty"`
	LastSentInDigestAt *time.Time `json:"last_sent_in_digest_at,omitempty"`
}

// Webhook is a user-registered generic HTTP endpoint, distinct from a
// Slack/Discord alert destination.
type Webhook struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	URL        string            `json:"url"`
	Secret     string            `json:"secret,omitempty"`
	IsActive   bool              `json:"is_active"`
	EventTypes []string          `json:"event_types"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// SubscribesTo reports whether the webhook wants the given event type.
// An empty subscription list means all events.
func (w *Webhook) SubscribesTo(eventType string) bool {
	if len(w.EventTypes) == 0 {
		return true
	}
	for _, et := range w.EventTypes {
		if et == eventType {
			return true
		}
	}
	return false
}

// DeliveryStatus is the lifecycle state of one WebhookDelivery.
type DeliveryStatus string

const (
	DeliveryPending  DeliveryStatus = "pending"
	DeliverySuccess  DeliveryStatus = "success"
	DeliveryFailed   DeliveryStatus = "failed"
	DeliveryRetrying DeliveryStatus = "retrying"
)

// DefaultMaxAttempts bounds retries for a WebhookDelivery.
const DefaultMaxAttempts = 5

// WebhookDelivery is one tracked attempt record for one event sent to one
// Webhook. Status is success or failed only after CompletedAt is set; while
// retrying, NextRetryAt must be set and in the future.
type WebhookDelivery struct {
	ID             string         `json:"id"`
	WebhookID      string         `json:"webhook_id"`
	EventType      string         `json:"event_type"`
	Payload        []byte         `json:"payload"`
	Status         DeliveryStatus `json:"status"`
	HTTPStatusCode int            `json:"http_status_code,omitempty"`
	ResponseBody   string         `json:"response_body,omitempty"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	AttemptCount   int            `json:"attempt_count"`
	MaxAttempts    int            `json:"max_attempts"`
	NextRetryAt    *time.Time     `json:"next_retry_at,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Terminal reports whether the delivery reached a final state.
func (d *WebhookDelivery) Terminal() bool {
	return d.Status == DeliverySuccess || d.Status == DeliveryFailed
}

// Integration holds per-user third-party connection state, looked up before
// bot-based sends.
type Integration struct {
	UserID    string `json:"user_id"`
	Provider  string `json:"provider"` // "discord"
	Connected bool   `json:"connected"`
	BotToken  string `json:"bot_token,omitempty"`
}

// InAppNotification is the record created by the in-app channel sender and
// read by the product UI.
type InAppNotification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MonitorID string    `json:"monitor_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// OutcomeEvent is one delivery-outcome record emitted per channel call for
// observability dashboards.
type OutcomeEvent struct {
	ID          string    `json:"id"`
	AlertID     string    `json:"alert_id"`
	MonitorID   string    `json:"monitor_id"`
	Channel     Channel   `json:"channel"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ResultCount int       `json:"result_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}
