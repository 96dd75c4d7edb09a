package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mentionpulse/alert-engine/internal/format"
	"github.com/mentionpulse/alert-engine/internal/models"
)

// Renders sample results through each channel formatter and saves the wire
// payloads, so payload changes can be eyeballed without hitting Slack or
// Discord.
func main() {
	fmt.Println("🔔 Alert Engine - Payload Preview")
	fmt.Println("=================================")

	now := time.Now()
	postedAt := now.Add(-3 * time.Hour)

	sampleResults := []models.Result{
		{
			ID:        "preview_1",
			MonitorID: "monitor_1",
			Title:     "Checkout keeps timing out on mobile",
			URL:       "https://reddit.com/r/ecommerce/comments/example1",
			Platform:  "Reddit",
			Author:    "frustrated_shopper",
			Sentiment: "negative",
			Category:  "pain_point",
			Summary:   "User reports repeated checkout timeouts on the mobile app, especially during payment confirmation. Several commenters describe the same behavior.",
			PostedAt:  &postedAt,
		},
		{
			ID:        "preview_2",
			MonitorID: "monitor_1",
			Title:     "Would love a dark mode in the dashboard",
			URL:       "https://twitter.com/nightowl_dev/status/example2",
			Platform:  "Twitter/X",
			Author:    "nightowl_dev",
			Sentiment: "neutral",
			Category:  "feature_request",
			Summary:   "Request for a dark theme option in the analytics dashboard.",
			PostedAt:  &postedAt,
		},
		{
			ID:        "preview_3",
			MonitorID: "monitor_1",
			Title:     "Switched from CompetitorX last month - no regrets",
			URL:       "https://g2.com/reviews/example3",
			Platform:  "G2",
			Author:    "happy_customer",
			Sentiment: "positive",
			Category:  "praise",
			Summary:   "Five-star review praising onboarding speed and support responsiveness after migrating from a competitor.",
			PostedAt:  &postedAt,
		},
	}

	const monitorName = "Acme Widgets"
	const dashboardURL = "https://app.example.com/monitors/monitor_1"

	fmt.Printf("\n📊 Rendering payloads for %d sample results...\n", len(sampleResults))

	slackMessage := format.BuildSlackMessage(monitorName, sampleResults, dashboardURL, now)
	discordMessage := format.BuildDiscordMessage(monitorName, sampleResults, dashboardURL)
	genericPayload := format.BuildGenericPayload(monitorName, sampleResults)

	payloads := map[string]interface{}{
		"slack":   slackMessage,
		"discord": discordMessage,
		"generic": genericPayload,
	}

	for channel, payload := range payloads {
		fmt.Println("\n" + strings.Repeat("=", 70))
		fmt.Printf("📤 %s payload\n", strings.ToUpper(channel))
		fmt.Println(strings.Repeat("=", 70))

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			fmt.Printf("❌ Error rendering %s payload: %v\n", channel, err)
			os.Exit(1)
		}
		fmt.Println(string(data))

		if err := savePayload(channel, data); err != nil {
			fmt.Printf("⚠️  Warning: could not save %s payload: %v\n", channel, err)
		}
	}

	fmt.Println("\n✅ Payload preview completed!")
	fmt.Println("\n💡 Next steps:")
	fmt.Println("   • Check the 'preview_output' directory for saved JSON payloads")
	fmt.Println("   • Run 'go test ./internal/format -v' for the formatter test suite")
	fmt.Println("   • Run the full engine with 'go run cmd/engine/main.go'")
}

func savePayload(channel string, data []byte) error {
	dir := "preview_output"
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s_payload.json", channel))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return err
	}

	fmt.Printf("\n💾 Saved to: %s\n", filename)
	return nil
}
