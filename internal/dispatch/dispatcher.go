// Package dispatch orchestrates one alert evaluation: load the alert, find
// eligible results, format the channel payload, invoke the matching sender,
// and record the outcome.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mentionpulse/alert-engine/internal/archive"
	"github.com/mentionpulse/alert-engine/internal/config"
	"github.com/mentionpulse/alert-engine/internal/digest"
	"github.com/mentionpulse/alert-engine/internal/format"
	"github.com/mentionpulse/alert-engine/internal/models"
	"github.com/mentionpulse/alert-engine/internal/senders"
	"github.com/mentionpulse/alert-engine/internal/store"
)

// Status is the terminal state of one alert evaluation.
type Status string

const (
	StatusSkipped    Status = "skipped"
	StatusDispatched Status = "dispatched"
)

// Evaluation reports what happened to one alert evaluation.
type Evaluation struct {
	AlertID     string          `json:"alert_id"`
	Status      Status          `json:"status"`
	Reason      string          `json:"reason,omitempty"`
	Channel     models.Channel  `json:"channel,omitempty"`
	ResultCount int             `json:"result_count"`
	Outcome     senders.Outcome `json:"outcome"`
}

// Senders bundles the per-channel senders the dispatcher fans out to.
type Senders struct {
	Email      *senders.EmailSender
	Slack      *senders.SlackSender
	DiscordWeb *senders.DiscordWebhookSender
	DiscordBot *senders.DiscordBotSender
	Generic    *senders.GenericWebhookSender
	InApp      *senders.InAppSender
}

// Dispatcher drives alert evaluations. Evaluations for different alerts may
// run concurrently; evaluations of the same alert are serialized by an
// in-flight guard, and the dedup stamp itself is a conditional store update
// so a lost race cannot double-send within a window.
type Dispatcher struct {
	cfg      *config.Config
	store    store.Store
	senders  Senders
	archiver archive.Archiver

	metrics *Metrics
	mu      sync.Mutex
	running map[string]bool
}

// NewDispatcher creates a dispatcher over the given store and senders.
func NewDispatcher(cfg *config.Config, st store.Store, snd Senders, archiver archive.Archiver) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		store:    st,
		senders:  snd,
		archiver: archiver,
		metrics:  newMetrics(),
		running:  make(map[string]bool),
	}
}

// DispatchDue evaluates every active alert with the given frequency. Each
// alert is dispatched independently; one channel's failure never blocks a
// sibling alert.
//
// Alerts sharing a monitor are evaluated against one eligibility snapshot
// and the dedup markers are stamped once after all of them have been
// attempted, so a monitor with an email and a Slack alert notifies both in
// the same cycle.
func (d *Dispatcher) DispatchDue(ctx context.Context, frequency models.Frequency) error {
	start := time.Now()
	now := time.Now()

	alerts, err := d.store.ListDueAlerts(ctx, frequency)
	if err != nil {
		return fmt.Errorf("failed to list due alerts: %w", err)
	}

	logrus.Infof("Dispatching %d %s alerts", len(alerts), frequency)

	byMonitor := make(map[string][]models.Alert)
	for _, alert := range alerts {
		byMonitor[alert.MonitorID] = append(byMonitor[alert.MonitorID], alert)
	}

	for monitorID, group := range byMonitor {
		if err := d.dispatchMonitor(ctx, monitorID, group, frequency, now); err != nil {
			logrus.Errorf("Monitor %s dispatch failed: %v", monitorID, err)
		}
	}

	d.metrics.recordRun(time.Since(start))
	return nil
}

func (d *Dispatcher) dispatchMonitor(ctx context.Context, monitorID string, alerts []models.Alert, frequency models.Frequency, now time.Time) error {
	monitor, err := d.store.GetMonitor(ctx, monitorID)
	if err != nil {
		if err == store.ErrNotFound {
			d.metrics.recordSkip()
			return nil
		}
		return fmt.Errorf("failed to load monitor %s: %w", monitorID, err)
	}

	if !monitor.IsActive {
		logrus.Debugf("Monitor %s is inactive, skipping its alerts", monitorID)
		for range alerts {
			d.metrics.recordSkip()
		}
		return nil
	}

	candidates, err := d.store.ListResults(ctx, monitorID)
	if err != nil {
		return fmt.Errorf("failed to list results for monitor %s: %w", monitorID, err)
	}

	eligible := digest.Eligible(frequency, candidates, now)
	if len(eligible) == 0 {
		logrus.Debugf("Monitor %s has no results to send", monitorID)
		for range alerts {
			d.metrics.recordSkip()
		}
		return nil
	}

	attempted := false
	for i := range alerts {
		alert := &alerts[i]

		if !d.acquire(alert.ID) {
			logrus.Debugf("Alert %s evaluation already in progress, skipping", alert.ID)
			continue
		}
		outcome, err := d.send(ctx, alert, monitor, eligible, now)
		d.release(alert.ID)

		if err != nil {
			logrus.Errorf("Alert %s dispatch failed: %v", alert.ID, err)
			continue
		}

		if !outcome.Skipped {
			attempted = true
		}
		d.record(alert, monitor, outcome, len(eligible), now)
	}

	if attempted {
		d.stampResults(ctx, frequency, eligible, now)
	}

	return nil
}

// DispatchAlert runs one alert evaluation at the supplied "now". The
// returned error is reserved for permanent errors (malformed payload
// construction, store faults); transient delivery failures are recorded in
// the Evaluation and logged only, to be retried on the alert's next
// scheduled evaluation.
func (d *Dispatcher) DispatchAlert(ctx context.Context, alertID string, now time.Time) (*Evaluation, error) {
	if !d.acquire(alertID) {
		return &Evaluation{AlertID: alertID, Status: StatusSkipped, Reason: "evaluation already in progress"}, nil
	}
	defer d.release(alertID)

	alert, err := d.store.GetAlert(ctx, alertID)
	if err != nil {
		if err == store.ErrNotFound {
			d.metrics.recordSkip()
			return &Evaluation{AlertID: alertID, Status: StatusSkipped, Reason: "alert not found"}, nil
		}
		return nil, fmt.Errorf("failed to load alert %s: %w", alertID, err)
	}

	if !alert.IsActive {
		d.metrics.recordSkip()
		return &Evaluation{AlertID: alertID, Status: StatusSkipped, Reason: "alert is inactive"}, nil
	}

	monitor, err := d.store.GetMonitor(ctx, alert.MonitorID)
	if err != nil {
		if err == store.ErrNotFound {
			d.metrics.recordSkip()
			return &Evaluation{AlertID: alertID, Status: StatusSkipped, Reason: "monitor not found"}, nil
		}
		return nil, fmt.Errorf("failed to load monitor %s: %w", alert.MonitorID, err)
	}

	if !monitor.IsActive {
		d.metrics.recordSkip()
		return &Evaluation{AlertID: alertID, Status: StatusSkipped, Reason: "monitor is inactive"}, nil
	}

	candidates, err := d.store.ListResults(ctx, monitor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for monitor %s: %w", monitor.ID, err)
	}

	eligible := digest.Eligible(alert.Frequency, candidates, now)
	if len(eligible) == 0 {
		logrus.Debugf("Alert %s has no results to send", alertID)
		d.metrics.recordSkip()
		return &Evaluation{AlertID: alertID, Status: StatusSkipped, Reason: "No results to send"}, nil
	}

	outcome, err := d.send(ctx, alert, monitor, eligible, now)
	if err != nil {
		return nil, err
	}

	// Stamp every attempted result, not only confirmed deliveries. A
	// permanently broken channel therefore costs one attempt per window
	// instead of looping forever. Skipped channels made no attempt.
	if !outcome.Skipped {
		d.stampResults(ctx, alert.Frequency, eligible, now)
	}

	d.record(alert, monitor, outcome, len(eligible), now)

	return &Evaluation{
		AlertID:     alertID,
		Status:      StatusDispatched,
		Channel:     alert.Channel,
		ResultCount: len(eligible),
		Outcome:     outcome,
	}, nil
}

// send routes the eligible results to the alert's single channel.
func (d *Dispatcher) send(ctx context.Context, alert *models.Alert, monitor *models.Monitor, results []models.Result, now time.Time) (senders.Outcome, error) {
	switch alert.Channel {
	case models.ChannelEmail:
		return d.senders.Email.Send(senders.EmailRequest{
			To:          alert.Destination,
			MonitorName: monitor.Name,
			UserID:      monitor.UserID,
			Results:     results,
		}), nil

	case models.ChannelSlack:
		message := format.BuildSlackMessage(monitor.Name, results, d.cfg.DashboardURL, now)
		return d.senders.Slack.Send(ctx, alert.Destination, message), nil

	case models.ChannelDiscord:
		message := format.BuildDiscordMessage(monitor.Name, results, d.cfg.DashboardURL)
		outcome, _ := d.senders.DiscordBot.Send(ctx, monitor.UserID, alert.Destination, message)
		return outcome, nil

	case models.ChannelWebhook:
		return d.sendWebhook(ctx, alert, monitor, results, now)

	case models.ChannelInApp:
		return d.senders.InApp.Send(ctx, monitor.UserID, monitor, results), nil

	default:
		return senders.Outcome{}, fmt.Errorf("alert %s has unknown channel %q", alert.ID, alert.Channel)
	}
}

// sendWebhook dispatches a "webhook" channel alert to its resolved
// destination: Slack and Discord native webhooks get their rich payloads,
// everything else gets the generic JSON envelope.
func (d *Dispatcher) sendWebhook(ctx context.Context, alert *models.Alert, monitor *models.Monitor, results []models.Result, now time.Time) (senders.Outcome, error) {
	// A webhook alert with no URL is a configuration gap, not a delivery
	// failure: skip without consuming the digest window.
	if alert.Destination == "" {
		logrus.Debugf("Webhook alert %s has no destination URL, skipping channel", alert.ID)
		return senders.Outcome{Skipped: true}, nil
	}

	dest := senders.DetectDestination(alert.Destination)

	switch dest.Type {
	case senders.DestinationSlack:
		message := format.BuildSlackMessage(monitor.Name, results, d.cfg.DashboardURL, now)
		return d.senders.Slack.Send(ctx, dest.URL, message), nil

	case senders.DestinationDiscord:
		message := format.BuildDiscordMessage(monitor.Name, results, d.cfg.DashboardURL)
		return d.senders.DiscordWeb.Send(ctx, dest.URL, message), nil

	default:
		payload := format.BuildGenericPayload(monitor.Name, results)
		body, err := json.Marshal(payload)
		if err != nil {
			return senders.Outcome{}, fmt.Errorf("failed to marshal webhook payload for alert %s: %w", alert.ID, err)
		}
		outcome := d.senders.Generic.Send(ctx, dest, body, nil, "")
		return outcome.Outcome, nil
	}
}

// stampResults writes the dedup marker for each attempted result through
// the conditional store update.
func (d *Dispatcher) stampResults(ctx context.Context, frequency models.Frequency, results []models.Result, now time.Time) {
	windowStart := digest.WindowStart(frequency, now)

	for _, result := range results {
		won, err := d.store.MarkResultSent(ctx, result.ID, now, windowStart)
		if err != nil {
			logrus.Errorf("Failed to stamp result %s: %v", result.ID, err)
			continue
		}
		if !won {
			logrus.Debugf("Result %s already stamped by a concurrent evaluation", result.ID)
		}
	}
}

// record emits the delivery-outcome event for observability.
func (d *Dispatcher) record(alert *models.Alert, monitor *models.Monitor, outcome senders.Outcome, resultCount int, now time.Time) {
	if outcome.Skipped {
		logrus.Infof("Alert %s channel %s skipped", alert.ID, alert.Channel)
		d.metrics.recordSkip()
		return
	}

	if outcome.Success {
		logrus.Infof("Alert %s delivered %d results via %s", alert.ID, resultCount, alert.Channel)
	} else {
		logrus.Errorf("Alert %s delivery via %s failed: %s", alert.ID, alert.Channel, outcome.Error)
	}
	d.metrics.recordDispatch(alert.Channel, outcome.Success)

	event := models.OutcomeEvent{
		ID:          uuid.New().String(),
		AlertID:     alert.ID,
		MonitorID:   monitor.ID,
		Channel:     alert.Channel,
		Success:     outcome.Success,
		Error:       outcome.Error,
		ResultCount: resultCount,
		OccurredAt:  now,
	}

	if err := d.archiver.ArchiveOutcomes([]models.OutcomeEvent{event}); err != nil {
		logrus.Errorf("Failed to archive outcome event for alert %s: %v", alert.ID, err)
	}
}

// GetMetrics returns current dispatcher metrics as JSON.
func (d *Dispatcher) GetMetrics() string {
	return d.metrics.JSON()
}

func (d *Dispatcher) acquire(alertID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running[alertID] {
		return false
	}
	d.running[alertID] = true
	return true
}

func (d *Dispatcher) release(alertID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.running, alertID)
}
