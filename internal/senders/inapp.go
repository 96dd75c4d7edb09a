package senders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mentionpulse/alert-engine/internal/models"
)

// InAppSink persists in-app notifications for the product UI to render.
type InAppSink interface {
	CreateInAppNotification(ctx context.Context, notification *models.InAppNotification) error
}

// InAppSender writes one notification record per digest into the sink.
type InAppSender struct {
	sink InAppSink
}

// NewInAppSender creates an in-app sender backed by the given sink.
func NewInAppSender(sink InAppSink) *InAppSender {
	return &InAppSender{sink: sink}
}

// Send records the digest as an in-app notification for the monitor's owner.
func (s *InAppSender) Send(ctx context.Context, userID string, monitor *models.Monitor, results []models.Result) Outcome {
	mentionWord := "mentions"
	if len(results) == 1 {
		mentionWord = "mention"
	}

	body := ""
	if len(results) > 0 {
		body = results[0].Title
		if len(results) > 1 {
			body = fmt.Sprintf("%s and %d more", body, len(results)-1)
		}
	}

	notification := &models.InAppNotification{
		ID:        uuid.New().String(),
		UserID:    userID,
		MonitorID: monitor.ID,
		Title:     fmt.Sprintf("%s: %d new %s", monitor.Name, len(results), mentionWord),
		Body:      body,
		CreatedAt: time.Now(),
	}

	if err := s.sink.CreateInAppNotification(ctx, notification); err != nil {
		return failure(fmt.Sprintf("failed to create in-app notification: %v", err))
	}

	return success()
}
