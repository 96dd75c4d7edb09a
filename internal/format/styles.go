package format

import "strings"

// Style pairs the color and emoji badge used when rendering a category or
// sentiment across channels.
type Style struct {
	Color string
	Emoji string
	Label string
}

// neutralColor is the fallback when neither category nor sentiment maps.
const neutralColor = "#6b7280"

// CategoryStyles is the fixed taxonomy produced by the classification
// pipeline. Unmapped categories contribute no color override.
var CategoryStyles = map[string]Style{
	"pain_point":         {Color: "#ef4444", Emoji: "😤", Label: "Pain Point"},
	"feature_request":    {Color: "#3b82f6", Emoji: "💡", Label: "Feature Request"},
	"praise":             {Color: "#22c55e", Emoji: "🎉", Label: "Praise"},
	"question":           {Color: "#8b5cf6", Emoji: "❓", Label: "Question"},
	"competitor_mention": {Color: "#f59e0b", Emoji: "⚔️", Label: "Competitor Mention"},
}

// SentimentStyles maps the three sentiment values.
var SentimentStyles = map[string]Style{
	"positive": {Color: "#22c55e", Emoji: "👍", Label: "positive"},
	"negative": {Color: "#ef4444", Emoji: "👎", Label: "negative"},
	"neutral":  {Color: "#9ca3af", Emoji: "😐", Label: "neutral"},
}

// resultColor picks the attachment/embed color: category first, then
// sentiment, then the neutral default.
func resultColor(category, sentiment string) string {
	if style, ok := CategoryStyles[category]; ok {
		return style.Color
	}
	if style, ok := SentimentStyles[sentiment]; ok {
		return style.Color
	}
	return neutralColor
}

// Truncate shortens s to at most max runes, appending an ellipsis marker
// when anything was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// hardTruncate cuts s to at most max runes with no ellipsis, for fields with
// hard platform limits.
func hardTruncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// escapeSlack escapes the three characters Slack treats as markup control
// in user-supplied text. Ampersand must go first.
func escapeSlack(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
