package senders

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/mentionpulse/alert-engine/internal/config"
	"github.com/mentionpulse/alert-engine/internal/format"
	"github.com/mentionpulse/alert-engine/internal/models"
)

// EmailRequest is the collaborator contract for the email channel.
type EmailRequest struct {
	To          string
	MonitorName string
	UserID      string
	Results     []models.Result
}

// EmailSender delivers a mention digest over SMTP with an HTML body and a
// plain-text alternative.
type EmailSender struct {
	cfg *config.Config
}

// NewEmailSender creates an email sender from SMTP configuration.
func NewEmailSender(cfg *config.Config) *EmailSender {
	return &EmailSender{cfg: cfg}
}

// Send builds and delivers the digest email, normalizing any failure.
func (s *EmailSender) Send(req EmailRequest) Outcome {
	if !s.cfg.EmailEnabled() {
		logrus.Debug("SMTP not configured, skipping email channel")
		return skipped()
	}

	if req.To == "" {
		logrus.Debug("Email alert has no destination address, skipping channel")
		return skipped()
	}

	mentionWord := "mentions"
	if len(req.Results) == 1 {
		mentionWord = "mention"
	}
	subject := fmt.Sprintf("%s: %d new %s", req.MonitorName, len(req.Results), mentionWord)

	htmlBody, err := s.buildHTML(req)
	if err != nil {
		return failure(fmt.Sprintf("failed to build email HTML: %v", err))
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.EmailFrom)
	m.SetHeader("To", req.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildText(req))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUsername, s.cfg.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		logrus.Errorf("Failed to send digest email to %s: %v", req.To, err)
		return failure(fmt.Sprintf("failed to send email: %v", err))
	}

	return success()
}

func (s *EmailSender) buildHTML(req EmailRequest) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Mentions</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #1d4ed8; color: white; padding: 20px; border-radius: 5px; }
        .mention { border-left: 4px solid #6b7280; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .mention-title { font-weight: bold; margin-bottom: 5px; }
        .mention-meta { color: #666; font-size: 0.9em; }
        .positive { border-left-color: #22c55e; }
        .negative { border-left-color: #ef4444; }
        .neutral { border-left-color: #6b7280; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.MonitorName}}</h1>
        <p>{{len .Results}} new mentions found</p>
    </div>

    {{range .Results}}
    <div class="mention {{.Sentiment}}">
        <div class="mention-title">
            <a href="{{.URL}}" target="_blank">{{.Title}}</a>
        </div>
        <div class="mention-meta">
            {{.Platform}}{{if .Author}} | By {{.Author}}{{end}}{{if .Category}} | {{.Category | label}}{{end}}
        </div>
        {{if .Summary}}
        <p>{{.Summary | truncate 200}}</p>
        {{end}}
    </div>
    {{end}}

    {{if .DashboardURL}}
    <p><a href="{{.DashboardURL}}">View all mentions on your dashboard</a></p>
    {{end}}

    <hr>
    <p><small>You are receiving this because of an email alert configured on this monitor.</small></p>
</body>
</html>
`

	t := template.New("digest").Funcs(template.FuncMap{
		"label": func(category string) string {
			if style, ok := format.CategoryStyles[category]; ok {
				return style.Label
			}
			return category
		},
		"truncate": func(length int, s string) string {
			return format.Truncate(s, length)
		},
	})

	t, err := t.Parse(tmpl)
	if err != nil {
		return "", err
	}

	data := struct {
		MonitorName  string
		Results      []models.Result
		DashboardURL string
	}{req.MonitorName, req.Results, s.cfg.DashboardURL}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *EmailSender) buildText(req EmailRequest) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("%s - %d new mentions\n\n", req.MonitorName, len(req.Results)))

	for i, result := range req.Results {
		text.WriteString(fmt.Sprintf("%d. %s\n", i+1, result.Title))
		text.WriteString(fmt.Sprintf("   Platform: %s", result.Platform))
		if result.Author != "" {
			text.WriteString(fmt.Sprintf(" | Author: %s", result.Author))
		}
		if result.Sentiment != "" {
			text.WriteString(fmt.Sprintf(" | Sentiment: %s", result.Sentiment))
		}
		text.WriteString("\n")
		text.WriteString(fmt.Sprintf("   URL: %s\n", result.URL))
		if result.Summary != "" {
			text.WriteString(fmt.Sprintf("   Summary: %s\n", format.Truncate(result.Summary, 200)))
		}
		text.WriteString("\n")
	}

	if s.cfg.DashboardURL != "" {
		text.WriteString(fmt.Sprintf("View all mentions: %s\n", s.cfg.DashboardURL))
	}

	return text.String()
}
