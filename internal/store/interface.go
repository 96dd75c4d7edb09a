package store

import (
	"context"
	"errors"
	"time"

	"github.com/mentionpulse/alert-engine/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract the delivery engine depends on. The
// real database lives outside this subsystem; the engine only reads
// entities and stamps delivery state through these operations.
type Store interface {
	// Alerts and monitors
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	ListDueAlerts(ctx context.Context, frequency models.Frequency) ([]models.Alert, error)
	GetMonitor(ctx context.Context, id string) (*models.Monitor, error)

	// Results, newest first.
	ListResults(ctx context.Context, monitorID string) ([]models.Result, error)

	// MarkResultSent stamps LastSentInDigestAt = sentAt only if the marker
	// is currently unset or before windowStart. Returns whether the update
	// won; a losing update means a concurrent evaluation already stamped
	// the result inside the current window.
	MarkResultSent(ctx context.Context, resultID string, sentAt, windowStart time.Time) (bool, error)

	// Webhooks and deliveries
	GetWebhook(ctx context.Context, id string) (*models.Webhook, error)
	ListSubscribedWebhooks(ctx context.Context, userID, eventType string) ([]models.Webhook, error)
	CreateDelivery(ctx context.Context, delivery *models.WebhookDelivery) error
	GetDelivery(ctx context.Context, id string) (*models.WebhookDelivery, error)

	// UpdateDelivery persists the delivery only if the stored record still
	// has attemptCount == expectedAttempt, so concurrent sweeps cannot
	// double-apply an attempt. Returns whether the update won.
	UpdateDelivery(ctx context.Context, delivery *models.WebhookDelivery, expectedAttempt int) (bool, error)

	// ListDueDeliveries returns retrying deliveries whose NextRetryAt has
	// passed.
	ListDueDeliveries(ctx context.Context, now time.Time) ([]models.WebhookDelivery, error)

	// In-app notifications and integrations
	CreateInAppNotification(ctx context.Context, notification *models.InAppNotification) error
	GetIntegration(ctx context.Context, userID, provider string) (*models.Integration, error)
}
