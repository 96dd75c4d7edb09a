package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mentionpulse/alert-engine/internal/config"
	"github.com/mentionpulse/alert-engine/internal/delivery"
	"github.com/mentionpulse/alert-engine/internal/dispatch"
	"github.com/mentionpulse/alert-engine/internal/models"
)

// Service wires the external schedule into the passive engine core: due
// alerts are evaluated per frequency, and retrying webhook deliveries are
// swept once their backoff has elapsed.
type Service struct {
	config     *config.Config
	dispatcher *dispatch.Dispatcher
	tracker    *delivery.Tracker
	cron       *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(cfg *config.Config, dispatcher *dispatch.Dispatcher, tracker *delivery.Tracker) *Service {
	return &Service{
		config:     cfg,
		dispatcher: dispatcher,
		tracker:    tracker,
		cron:       cron.New(cron.WithSeconds()),
	}
}

// Start registers the cron entries and begins scheduling.
func (s *Service) Start() error {
	entries := []struct {
		spec      string
		frequency models.Frequency
	}{
		// Instant alerts poll every few minutes; digests close at 9 AM UTC.
		{instantSpec(s.config.InstantInterval), models.FrequencyInstant},
		{"0 0 9 * * *", models.FrequencyDaily},
		{"0 0 9 * * MON", models.FrequencyWeekly},
		{"0 0 9 1 * *", models.FrequencyMonthly},
	}

	for _, entry := range entries {
		frequency := entry.frequency
		_, err := s.cron.AddFunc(entry.spec, func() {
			logrus.Infof("Starting scheduled %s alert dispatch", frequency)
			if err := s.dispatcher.DispatchDue(context.Background(), frequency); err != nil {
				logrus.Errorf("Scheduled %s dispatch failed: %v", frequency, err)
			}
		})
		if err != nil {
			return err
		}
	}

	_, err := s.cron.AddFunc(sweepSpec(s.config.SweepInterval), func() {
		if err := s.tracker.ProcessDue(context.Background(), time.Now()); err != nil {
			logrus.Errorf("Webhook retry sweep failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Info("Scheduler started (alert dispatch per frequency plus per-minute retry sweep)")
	return nil
}

// instantSpec polls instant alerts every interval, floored to one minute.
func instantSpec(interval time.Duration) string {
	minutes := int(interval.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("0 */%d * * * *", minutes)
}

// sweepSpec runs the retry sweep every interval. Sub-minute intervals use
// the seconds field.
func sweepSpec(interval time.Duration) string {
	if interval >= time.Minute {
		return fmt.Sprintf("0 */%d * * * *", int(interval.Minutes()))
	}

	seconds := int(interval.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("*/%d * * * * *", seconds)
}

// Stop stops the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
