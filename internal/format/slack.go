package format

import (
	"fmt"
	"time"

	"github.com/mentionpulse/alert-engine/internal/models"
)

// maxSlackAttachments caps how many results get their own attachment; the
// header still reports the full count.
const maxSlackAttachments = 5

// slackSummaryLimit bounds the quoted AI summary inside an attachment.
const slackSummaryLimit = 200

// SlackMessage is the wire payload POSTed to a Slack webhook URL.
type SlackMessage struct {
	Text        string            `json:"text"`
	Blocks      []SlackBlock      `json:"blocks,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment is one colored result card.
type SlackAttachment struct {
	Color  string       `json:"color"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock is a Block Kit block. Only the fields this engine emits are
// modeled.
type SlackBlock struct {
	Type      string       `json:"type"`
	Text      *SlackText   `json:"text,omitempty"`
	Elements  []SlackText  `json:"elements,omitempty"`
	Accessory *SlackButton `json:"accessory,omitempty"`
}

type SlackText struct {
	Type string `json:"type"` // "plain_text" or "mrkdwn"
	Text string `json:"text"`
}

type SlackButton struct {
	Type string    `json:"type"` // "button"
	Text SlackText `json:"text"`
	URL  string    `json:"url"`
}

// BuildSlackMessage renders a digest of results into a Slack Block Kit
// message. Pure: no I/O, deterministic for a fixed now.
func BuildSlackMessage(monitorName string, results []models.Result, dashboardURL string, now time.Time) *SlackMessage {
	mentionWord := "mentions"
	if len(results) == 1 {
		mentionWord = "mention"
	}

	msg := &SlackMessage{
		Text: fmt.Sprintf("%s: %d new %s", monitorName, len(results), mentionWord),
		Blocks: []SlackBlock{
			{
				Type: "header",
				Text: &SlackText{
					Type: "plain_text",
					Text: fmt.Sprintf("🔔 %s: %d new %s", escapeSlack(monitorName), len(results), mentionWord),
				},
			},
			{
				Type: "context",
				Elements: []SlackText{
					{Type: "mrkdwn", Text: now.Format("Monday, January 2, 2006 at 3:04 PM MST")},
				},
			},
		},
	}

	limit := len(results)
	if limit > maxSlackAttachments {
		limit = maxSlackAttachments
	}

	for i := 0; i < limit; i++ {
		msg.Attachments = append(msg.Attachments, buildSlackAttachment(results[i]))
	}

	if dashboardURL != "" {
		msg.Blocks = append(msg.Blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("<%s|View all mentions on your dashboard →>", dashboardURL),
			},
		})
	}

	return msg
}

func buildSlackAttachment(result models.Result) SlackAttachment {
	title := escapeSlack(result.Title)

	attachment := SlackAttachment{
		Color: resultColor(result.Category, result.Sentiment),
		Blocks: []SlackBlock{
			{
				Type: "section",
				Text: &SlackText{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*<%s|%s>*", result.URL, title),
				},
				Accessory: &SlackButton{
					Type: "button",
					Text: SlackText{Type: "plain_text", Text: "View"},
					URL:  result.URL,
				},
			},
			{
				Type:     "context",
				Elements: []SlackText{{Type: "mrkdwn", Text: slackBadges(result)}},
			},
		},
	}

	if result.Summary != "" {
		attachment.Blocks = append(attachment.Blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("> %s", escapeSlack(Truncate(result.Summary, slackSummaryLimit))),
			},
		})
	}

	if byline := slackByline(result); byline != "" {
		attachment.Blocks = append(attachment.Blocks, SlackBlock{
			Type:     "context",
			Elements: []SlackText{{Type: "mrkdwn", Text: byline}},
		})
	}

	return attachment
}

// slackBadges builds the platform/category/sentiment context line.
func slackBadges(result models.Result) string {
	badges := fmt.Sprintf("📍 %s", escapeSlack(result.Platform))

	if style, ok := CategoryStyles[result.Category]; ok {
		badges += fmt.Sprintf("  |  %s %s", style.Emoji, style.Label)
	}

	if style, ok := SentimentStyles[result.Sentiment]; ok {
		badges += fmt.Sprintf("  |  %s %s", style.Emoji, style.Label)
	}

	return badges
}

func slackByline(result models.Result) string {
	switch {
	case result.Author != "" && result.PostedAt != nil:
		return fmt.Sprintf("by %s · %s", escapeSlack(result.Author), result.PostedAt.Format("Jan 2, 2006"))
	case result.Author != "":
		return fmt.Sprintf("by %s", escapeSlack(result.Author))
	case result.PostedAt != nil:
		return result.PostedAt.Format("Jan 2, 2006")
	default:
		return ""
	}
}
