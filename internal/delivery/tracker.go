// Package delivery drives the retry state machine for user-registered
// generic webhooks: pending → retrying* → success | failed.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mentionpulse/alert-engine/internal/config"
	"github.com/mentionpulse/alert-engine/internal/models"
	"github.com/mentionpulse/alert-engine/internal/senders"
	"github.com/mentionpulse/alert-engine/internal/store"
)

// Tracker creates delivery records and drives attempts to completion. It is
// passive between attempts; an external sweep re-invokes it for due retries.
type Tracker struct {
	cfg    *config.Config
	store  store.Store
	sender *senders.GenericWebhookSender
}

// NewTracker creates a tracker over the given store and sender.
func NewTracker(cfg *config.Config, st store.Store, sender *senders.GenericWebhookSender) *Tracker {
	return &Tracker{
		cfg:    cfg,
		store:  st,
		sender: sender,
	}
}

// Trigger fires an event at every active webhook of the user subscribed to
// the event type. One delivery record is created per webhook, and the first
// attempt runs immediately. Failures are isolated per webhook.
func (t *Tracker) Trigger(ctx context.Context, userID, eventType string, payload interface{}) ([]*models.WebhookDelivery, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event payload: %w", eventType, err)
	}

	webhooks, err := t.store.ListSubscribedWebhooks(ctx, userID, eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks for user %s: %w", userID, err)
	}

	var deliveries []*models.WebhookDelivery
	for i := range webhooks {
		delivery, err := t.TriggerWebhook(ctx, &webhooks[i], eventType, body)
		if err != nil {
			logrus.Errorf("Failed to trigger webhook %s: %v", webhooks[i].ID, err)
			continue
		}
		deliveries = append(deliveries, delivery)
	}

	return deliveries, nil
}

// TriggerWebhook creates a pending delivery for one webhook and runs the
// first attempt.
func (t *Tracker) TriggerWebhook(ctx context.Context, webhook *models.Webhook, eventType string, body []byte) (*models.WebhookDelivery, error) {
	delivery := &models.WebhookDelivery{
		ID:          uuid.New().String(),
		WebhookID:   webhook.ID,
		EventType:   eventType,
		Payload:     body,
		Status:      models.DeliveryPending,
		MaxAttempts: t.cfg.MaxAttempts,
		CreatedAt:   time.Now(),
	}

	if err := t.store.CreateDelivery(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to create delivery record: %w", err)
	}

	if err := t.Attempt(ctx, delivery, time.Now()); err != nil {
		return delivery, err
	}

	return delivery, nil
}

// Attempt runs one delivery attempt and advances the state machine. The
// update is conditional on the attempt count observed at entry, so a
// concurrent sweep of the same delivery cannot double-apply.
func (t *Tracker) Attempt(ctx context.Context, delivery *models.WebhookDelivery, now time.Time) error {
	if delivery.Terminal() {
		return nil
	}

	webhook, err := t.store.GetWebhook(ctx, delivery.WebhookID)
	if err != nil {
		return fmt.Errorf("failed to load webhook %s: %w", delivery.WebhookID, err)
	}

	expected := delivery.AttemptCount
	delivery.AttemptCount++

	if !webhook.IsActive {
		// The endpoint was disabled mid-flight; finish the record instead
		// of retrying against it. History is kept for audit.
		t.complete(delivery, models.DeliveryFailed, "webhook is inactive", now)
		return t.persist(ctx, delivery, expected)
	}

	dest := senders.Destination{Type: senders.DestinationGeneric, URL: webhook.URL}
	outcome := t.sender.Send(ctx, dest, delivery.Payload, webhook.Headers, webhook.Secret)

	delivery.HTTPStatusCode = outcome.StatusCode
	delivery.ResponseBody = outcome.ResponseBody

	if outcome.Success {
		t.complete(delivery, models.DeliverySuccess, "", now)
		logrus.Infof("Delivery %s succeeded on attempt %d", delivery.ID, delivery.AttemptCount)
		return t.persist(ctx, delivery, expected)
	}

	delivery.ErrorMessage = outcome.Error

	if delivery.AttemptCount >= delivery.MaxAttempts {
		t.complete(delivery, models.DeliveryFailed, outcome.Error, now)
		logrus.Errorf("Delivery %s exhausted %d attempts: %s", delivery.ID, delivery.MaxAttempts, outcome.Error)
		return t.persist(ctx, delivery, expected)
	}

	retryAt := now.Add(t.backoff(delivery.AttemptCount))
	delivery.Status = models.DeliveryRetrying
	delivery.NextRetryAt = &retryAt
	logrus.Infof("Delivery %s attempt %d/%d failed, retrying at %s", delivery.ID, delivery.AttemptCount, delivery.MaxAttempts, retryAt.Format(time.RFC3339))

	return t.persist(ctx, delivery, expected)
}

// ProcessDue re-attempts every retrying delivery whose NextRetryAt has
// passed. Called by the periodic sweep.
func (t *Tracker) ProcessDue(ctx context.Context, now time.Time) error {
	due, err := t.store.ListDueDeliveries(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list due deliveries: %w", err)
	}

	if len(due) > 0 {
		logrus.Infof("Sweeping %d due webhook deliveries", len(due))
	}

	for i := range due {
		if err := t.Attempt(ctx, &due[i], now); err != nil {
			logrus.Errorf("Retry of delivery %s failed: %v", due[i].ID, err)
		}
	}

	return nil
}

func (t *Tracker) complete(delivery *models.WebhookDelivery, status models.DeliveryStatus, errMsg string, now time.Time) {
	completed := now
	delivery.Status = status
	delivery.ErrorMessage = errMsg
	delivery.CompletedAt = &completed
	delivery.NextRetryAt = nil
}

func (t *Tracker) persist(ctx context.Context, delivery *models.WebhookDelivery, expectedAttempt int) error {
	won, err := t.store.UpdateDelivery(ctx, delivery, expectedAttempt)
	if err != nil {
		return fmt.Errorf("failed to update delivery %s: %w", delivery.ID, err)
	}
	if !won {
		logrus.Debugf("Delivery %s was updated by a concurrent attempt, dropping ours", delivery.ID)
	}
	return nil
}

// backoff returns the exponential delay before the next retry, seeded from
// the attempt count just consumed.
func (t *Tracker) backoff(attempt int) time.Duration {
	delay := t.cfg.RetryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= t.cfg.RetryMaxDelay {
			return t.cfg.RetryMaxDelay
		}
	}
	if delay > t.cfg.RetryMaxDelay {
		return t.cfg.RetryMaxDelay
	}
	return delay
}
