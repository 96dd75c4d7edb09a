package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentionpulse/alert-engine/internal/models"
)

func TestMemoryStore_MarkResultSent_Conditional(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	windowStart := now.Add(-24 * time.Hour)

	st := NewMemoryStore()
	st.PutResult(models.Result{ID: "r1", MonitorID: "m1"})

	// First stamp wins.
	won, err := st.MarkResultSent(ctx, "r1", now, windowStart)
	require.NoError(t, err)
	assert.True(t, won)

	result, _ := st.GetResult("r1")
	require.NotNil(t, result.LastSentInDigestAt)
	assert.Equal(t, now, *result.LastSentInDigestAt)

	// A concurrent evaluation inside the same window loses.
	won, err = st.MarkResultSent(ctx, "r1", now.Add(time.Minute), windowStart)
	require.NoError(t, err)
	assert.False(t, won)

	// After the window boundary passes the stamp, a new evaluation wins.
	later := now.Add(25 * time.Hour)
	won, err = st.MarkResultSent(ctx, "r1", later, later.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.True(t, won)

	result, _ = st.GetResult("r1")
	assert.Equal(t, later, *result.LastSentInDigestAt)
}

func TestMemoryStore_MarkResultSent_InstantNeverRestamps(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	st := NewMemoryStore()
	st.PutResult(models.Result{ID: "r1"})

	won, err := st.MarkResultSent(ctx, "r1", now, time.Time{})
	require.NoError(t, err)
	assert.True(t, won)

	// Zero windowStart (instant) means a stamped result never re-stamps.
	won, err = st.MarkResultSent(ctx, "r1", now.Add(time.Hour), time.Time{})
	require.NoError(t, err)
	assert.False(t, won)
}

func TestMemoryStore_MarkResultSent_NotFound(t *testing.T) {
	st := NewMemoryStore()

	_, err := st.MarkResultSent(context.Background(), "missing", time.Now(), time.Time{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UpdateDelivery_CAS(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	delivery := models.WebhookDelivery{ID: "d1", Status: models.DeliveryPending, AttemptCount: 0}
	require.NoError(t, st.CreateDelivery(ctx, &delivery))

	// Winner observed attemptCount 0.
	updated := delivery
	updated.AttemptCount = 1
	updated.Status = models.DeliveryRetrying
	won, err := st.UpdateDelivery(ctx, &updated, 0)
	require.NoError(t, err)
	assert.True(t, won)

	// A stale writer that also observed 0 loses.
	stale := delivery
	stale.AttemptCount = 1
	stale.Status = models.DeliverySuccess
	won, err = st.UpdateDelivery(ctx, &stale, 0)
	require.NoError(t, err)
	assert.False(t, won)

	stored, err := st.GetDelivery(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryRetrying, stored.Status)
}

func TestMemoryStore_ListDueDeliveries(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	st := NewMemoryStore()
	require.NoError(t, st.CreateDelivery(ctx, &models.WebhookDelivery{ID: "due", Status: models.DeliveryRetrying, NextRetryAt: &past}))
	require.NoError(t, st.CreateDelivery(ctx, &models.WebhookDelivery{ID: "not-yet", Status: models.DeliveryRetrying, NextRetryAt: &future}))
	require.NoError(t, st.CreateDelivery(ctx, &models.WebhookDelivery{ID: "done", Status: models.DeliverySuccess}))

	due, err := st.ListDueDeliveries(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "due", due[0].ID)
}

func TestMemoryStore_ListSubscribedWebhooks(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	st.PutWebhook(models.Webhook{ID: "w1", UserID: "u1", IsActive: true, EventTypes: []string{"new_results"}})
	st.PutWebhook(models.Webhook{ID: "w2", UserID: "u1", IsActive: true, EventTypes: []string{"monitor_paused"}})
	st.PutWebhook(models.Webhook{ID: "w3", UserID: "u1", IsActive: false, EventTypes: []string{"new_results"}})
	st.PutWebhook(models.Webhook{ID: "w4", UserID: "u2", IsActive: true, EventTypes: []string{"new_results"}})
	st.PutWebhook(models.Webhook{ID: "w5", UserID: "u1", IsActive: true}) // all events

	webhooks, err := st.ListSubscribedWebhooks(ctx, "u1", "new_results")
	require.NoError(t, err)
	require.Len(t, webhooks, 2)
	assert.Equal(t, "w1", webhooks[0].ID)
	assert.Equal(t, "w5", webhooks[1].ID)
}

func TestMemoryStore_ListDueAlerts(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	st.PutAlert(models.Alert{ID: "a1", Frequency: models.FrequencyDaily, IsActive: true})
	st.PutAlert(models.Alert{ID: "a2", Frequency: models.FrequencyDaily, IsActive: false})
	st.PutAlert(models.Alert{ID: "a3", Frequency: models.FrequencyWeekly, IsActive: true})

	due, err := st.ListDueAlerts(ctx, models.FrequencyDaily)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "a1", due[0].ID)
}
