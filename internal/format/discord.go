package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mentionpulse/alert-engine/internal/models"
)

const (
	// maxDiscordEmbeds caps per-result embeds; a summary embed may follow.
	maxDiscordEmbeds = 5

	// discordTitleLimit is Discord's hard limit on embed titles.
	discordTitleLimit = 256

	// discordSummaryLimit bounds the AI summary used as the description.
	discordSummaryLimit = 300
)

// DiscordMessage is the wire payload for a Discord webhook or the Bot API.
type DiscordMessage struct {
	Content string         `json:"content"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

type DiscordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// BuildDiscordMessage renders a digest of results into a Discord message
// with up to five embeds plus an overflow summary embed.
func BuildDiscordMessage(monitorName string, results []models.Result, dashboardURL string) *DiscordMessage {
	mentionWord := "mentions"
	if len(results) == 1 {
		mentionWord = "mention"
	}

	msg := &DiscordMessage{
		Content: fmt.Sprintf("🔔 **%s**: %d new %s", monitorName, len(results), mentionWord),
	}

	limit := len(results)
	if limit > maxDiscordEmbeds {
		limit = maxDiscordEmbeds
	}

	for i := 0; i < limit; i++ {
		msg.Embeds = append(msg.Embeds, buildDiscordEmbed(results[i]))
	}

	if len(results) > maxDiscordEmbeds {
		msg.Embeds = append(msg.Embeds, DiscordEmbed{
			Title: fmt.Sprintf("+%d more %s", len(results)-maxDiscordEmbeds, mentionWord),
			URL:   dashboardURL,
			Color: hexToDecimal(neutralColor),
		})
	}

	return msg
}

func buildDiscordEmbed(result models.Result) DiscordEmbed {
	embed := DiscordEmbed{
		Title: hardTruncate(result.Title, discordTitleLimit),
		URL:   result.URL,
		Color: hexToDecimal(resultColor(result.Category, result.Sentiment)),
		Fields: []DiscordEmbedField{
			{Name: "Platform", Value: result.Platform, Inline: true},
		},
	}

	if style, ok := CategoryStyles[result.Category]; ok {
		embed.Fields = append(embed.Fields, DiscordEmbedField{
			Name:   "Category",
			Value:  fmt.Sprintf("%s %s", style.Emoji, style.Label),
			Inline: true,
		})
	}

	if style, ok := SentimentStyles[result.Sentiment]; ok {
		embed.Fields = append(embed.Fields, DiscordEmbedField{
			Name:   "Sentiment",
			Value:  fmt.Sprintf("%s %s", style.Emoji, style.Label),
			Inline: true,
		})
	}

	if result.Summary != "" {
		embed.Description = Truncate(result.Summary, discordSummaryLimit)
	}

	if result.PostedAt != nil {
		if result.Author != "" {
			embed.Footer = &DiscordEmbedFooter{Text: fmt.Sprintf("by %s", result.Author)}
		}
		embed.Timestamp = result.PostedAt.UTC().Format(time.RFC3339)
	} else if result.Author != "" {
		embed.Footer = &DiscordEmbedFooter{Text: fmt.Sprintf("by %s", result.Author)}
	}

	return embed
}

// hexToDecimal converts "#RRGGBB" to the integer color Discord expects.
func hexToDecimal(hex string) int {
	hex = strings.TrimPrefix(hex, "#")
	value, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0
	}
	return int(value)
}
