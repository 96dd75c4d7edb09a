package senders

import "strings"

// DestinationType tags a webhook URL with the platform it belongs to.
type DestinationType string

const (
	DestinationSlack   DestinationType = "slack"
	DestinationDiscord DestinationType = "discord"
	DestinationGeneric DestinationType = "generic"
)

// Destination is a resolved webhook target. It is detected once, when an
// alert or webhook is registered, and carried as a tagged value instead of
// re-sniffing the URL on every send.
type Destination struct {
	Type DestinationType
	URL  string
}

// DetectDestination classifies a webhook URL so a single "webhook" alert
// channel can transparently target Slack, Discord, or a custom endpoint.
func DetectDestination(url string) Destination {
	switch {
	case strings.Contains(url, "hooks.slack.com"), strings.Contains(url, "slack.com/services"):
		return Destination{Type: DestinationSlack, URL: url}
	case strings.Contains(url, "discord.com/api/webhooks"), strings.Contains(url, "discordapp.com/api/webhooks"):
		return Destination{Type: DestinationDiscord, URL: url}
	default:
		return Destination{Type: DestinationGeneric, URL: url}
	}
}
