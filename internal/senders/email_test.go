package senders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentionpulse/alert-engine/internal/config"
	"github.com/mentionpulse/alert-engine/internal/models"
)

func emailTestConfig() *config.Config {
	return &config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPUsername: "alerts@example.com",
		SMTPPassword: "password",
		EmailFrom:    "alerts@example.com",
		DashboardURL: "https://app.example.com/dash",
	}
}

func TestEmailSender_SkipsWhenUnconfigured(t *testing.T) {
	sender := NewEmailSender(&config.Config{})

	outcome := sender.Send(EmailRequest{To: "user@example.com", MonitorName: "Acme"})

	assert.True(t, outcome.Skipped)
}

func TestEmailSender_SkipsOnEmptyDestination(t *testing.T) {
	sender := NewEmailSender(emailTestConfig())

	// A missing address is a configuration gap, not a delivery failure.
	outcome := sender.Send(EmailRequest{MonitorName: "Acme"})

	assert.True(t, outcome.Skipped)
	assert.False(t, outcome.Success)
	assert.Empty(t, outcome.Error)
}

func TestEmailSender_BuildHTML(t *testing.T) {
	sender := NewEmailSender(emailTestConfig())

	req := EmailRequest{
		To:          "user@example.com",
		MonitorName: "Acme Widgets",
		Results: []models.Result{
			{
				Title:     "Checkout broken again",
				URL:       "https://example.com/post",
				Platform:  "Reddit",
				Author:    "angry_user",
				Sentiment: "negative",
				Category:  "pain_point",
				Summary:   strings.Repeat("x", 250),
			},
		},
	}

	html, err := sender.buildHTML(req)
	require.NoError(t, err)

	assert.Contains(t, html, "Acme Widgets")
	assert.Contains(t, html, "Checkout broken again")
	assert.Contains(t, html, "Pain Point")
	assert.Contains(t, html, "https://app.example.com/dash")
	// Summary truncated to 200 characters plus marker.
	assert.Contains(t, html, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, html, strings.Repeat("x", 201))
}

func TestEmailSender_TruncationIsRuneSafe(t *testing.T) {
	sender := NewEmailSender(emailTestConfig())

	// 250 multi-byte runes must cut at 200 runes, never mid-rune.
	summary := strings.Repeat("é", 250)
	req := EmailRequest{
		MonitorName: "Acme Widgets",
		Results: []models.Result{
			{Title: "Accents everywhere", URL: "https://example.com/post", Platform: "Reddit", Summary: summary},
		},
	}

	text := sender.buildText(req)
	assert.Contains(t, text, strings.Repeat("é", 200)+"...")
	assert.NotContains(t, text, strings.Repeat("é", 201))

	html, err := sender.buildHTML(req)
	require.NoError(t, err)
	assert.Contains(t, html, strings.Repeat("é", 200)+"...")
	assert.NotContains(t, html, strings.Repeat("é", 201))
}

func TestEmailSender_BuildText(t *testing.T) {
	sender := NewEmailSender(emailTestConfig())

	req := EmailRequest{
		MonitorName: "Acme Widgets",
		Results: []models.Result{
			{Title: "First mention", URL: "https://example.com/1", Platform: "Reddit", Sentiment: "neutral"},
			{Title: "Second mention", URL: "https://example.com/2", Platform: "G2", Author: "reviewer"},
		},
	}

	text := sender.buildText(req)

	assert.Contains(t, text, "Acme Widgets - 2 new mentions")
	assert.Contains(t, text, "1. First mention")
	assert.Contains(t, text, "2. Second mention")
	assert.Contains(t, text, "Author: reviewer")
	assert.Contains(t, text, "https://app.example.com/dash")
}
