package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mentionpulse/alert-engine/internal/models"
)

// MemoryStore is a mutex-guarded in-memory Store. It honors the same
// conditional-update semantics a transactional database implementation
// must provide, and is the reference backend for tests and local runs.
type MemoryStore struct {
	mu sync.RWMutex

	monitors      map[string]models.Monitor
	alerts        map[string]models.Alert
	results       map[string]models.Result
	webhooks      map[string]models.Webhook
	deliveries    map[string]models.WebhookDelivery
	notifications map[string]models.InAppNotification
	integrations  map[string]models.Integration // keyed by userID+"/"+provider
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		monitors:      make(map[string]models.Monitor),
		alerts:        make(map[string]models.Alert),
		results:       make(map[string]models.Result),
		webhooks:      make(map[string]models.Webhook),
		deliveries:    make(map[string]models.WebhookDelivery),
		notifications: make(map[string]models.InAppNotification),
		integrations:  make(map[string]models.Integration),
	}
}

// Seed helpers used by wiring and tests.

func (s *MemoryStore) PutMonitor(monitor models.Monitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitors[monitor.ID] = monitor
}

func (s *MemoryStore) PutAlert(alert models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[alert.ID] = alert
}

func (s *MemoryStore) PutResult(result models.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.ID] = result
}

func (s *MemoryStore) PutWebhook(webhook models.Webhook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhooks[webhook.ID] = webhook
}

func (s *MemoryStore) PutIntegration(integration models.Integration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.integrations[integration.UserID+"/"+integration.Provider] = integration
}

// GetResult returns a copy of one result, for test assertions.
func (s *MemoryStore) GetResult(id string) (models.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	return result, ok
}

// ListInAppNotifications returns all stored in-app notifications.
func (s *MemoryStore) ListInAppNotifications() []models.InAppNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.InAppNotification
	for _, n := range s.notifications {
		out = append(out, n)
	}
	return out
}

// Store contract implementation.

func (s *MemoryStore) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, ok := s.alerts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &alert, nil
}

func (s *MemoryStore) ListDueAlerts(ctx context.Context, frequency models.Frequency) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []models.Alert
	for _, alert := range s.alerts {
		if alert.Frequency == frequency && alert.IsActive {
			due = append(due, alert)
		}
	}

	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (s *MemoryStore) GetMonitor(ctx context.Context, id string) (*models.Monitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	monitor, ok := s.monitors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &monitor, nil
}

func (s *MemoryStore) ListResults(ctx context.Context, monitorID string) ([]models.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []models.Result
	for _, result := range s.results {
		if result.MonitorID == monitorID {
			results = append(results, result)
		}
	}

	// Newest first, matching the recency order of the production query.
	sort.Slice(results, func(i, j int) bool {
		ti, tj := results[i].PostedAt, results[j].PostedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	return results, nil
}

func (s *MemoryStore) MarkResultSent(ctx context.Context, resultID string, sentAt, windowStart time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.results[resultID]
	if !ok {
		return false, ErrNotFound
	}

	if result.LastSentInDigestAt != nil {
		// Already stamped inside the current window: lose.
		if windowStart.IsZero() || !result.LastSentInDigestAt.Before(windowStart) {
			return false, nil
		}
		// The marker is monotonically non-decreasing.
		if sentAt.Before(*result.LastSentInDigestAt) {
			return false, nil
		}
	}

	stamped := sentAt
	result.LastSentInDigestAt = &stamped
	s.results[resultID] = result
	return true, nil
}

func (s *MemoryStore) GetWebhook(ctx context.Context, id string) (*models.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	webhook, ok := s.webhooks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &webhook, nil
}

func (s *MemoryStore) ListSubscribedWebhooks(ctx context.Context, userID, eventType string) ([]models.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var subscribed []models.Webhook
	for _, webhook := range s.webhooks {
		if webhook.UserID != userID || !webhook.IsActive {
			continue
		}
		if webhook.SubscribesTo(eventType) {
			subscribed = append(subscribed, webhook)
		}
	}

	sort.Slice(subscribed, func(i, j int) bool { return subscribed[i].ID < subscribed[j].ID })
	return subscribed, nil
}

func (s *MemoryStore) CreateDelivery(ctx context.Context, delivery *models.WebhookDelivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deliveries[delivery.ID] = *delivery
	return nil
}

func (s *MemoryStore) GetDelivery(ctx context.Context, id string) (*models.WebhookDelivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	delivery, ok := s.deliveries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &delivery, nil
}

func (s *MemoryStore) UpdateDelivery(ctx context.Context, delivery *models.WebhookDelivery, expectedAttempt int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.deliveries[delivery.ID]
	if !ok {
		return false, ErrNotFound
	}

	if stored.AttemptCount != expectedAttempt {
		return false, nil
	}

	s.deliveries[delivery.ID] = *delivery
	return true, nil
}

func (s *MemoryStore) ListDueDeliveries(ctx context.Context, now time.Time) ([]models.WebhookDelivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []models.WebhookDelivery
	for _, delivery := range s.deliveries {
		if delivery.Status != models.DeliveryRetrying {
			continue
		}
		if delivery.NextRetryAt != nil && !delivery.NextRetryAt.After(now) {
			due = append(due, delivery)
		}
	}

	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (s *MemoryStore) CreateInAppNotification(ctx context.Context, notification *models.InAppNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[notification.ID] = *notification
	return nil
}

func (s *MemoryStore) GetIntegration(ctx context.Context, userID, provider string) (*models.Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	integration, ok := s.integrations[userID+"/"+provider]
	if !ok {
		return nil, nil
	}
	return &integration, nil
}
