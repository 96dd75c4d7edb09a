package format

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentionpulse/alert-engine/internal/models"
)

func sampleResult(id string) models.Result {
	return models.Result{
		ID:        id,
		MonitorID: "monitor-1",
		Title:     "Result " + id,
		URL:       "https://example.com/" + id,
		Platform:  "Reddit",
		Sentiment: "neutral",
	}
}

func TestBuildSlackMessage_AttachmentCap(t *testing.T) {
	var results []models.Result
	for i := 0; i < 12; i++ {
		results = append(results, sampleResult(fmt.Sprintf("r%d", i)))
	}

	msg := BuildSlackMessage("Acme", results, "", time.Now())

	assert.Len(t, msg.Attachments, 5)
	// The header still counts all 12.
	require.NotEmpty(t, msg.Blocks)
	assert.Contains(t, msg.Blocks[0].Text.Text, "12 new mentions")
}

func TestBuildSlackMessage_EscapesUserText(t *testing.T) {
	result := sampleResult("r1")
	result.Title = "<script>&</script>"

	msg := BuildSlackMessage("Acme", []models.Result{result}, "", time.Now())

	require.Len(t, msg.Attachments, 1)
	titleBlock := msg.Attachments[0].Blocks[0]
	assert.Contains(t, titleBlock.Text.Text, "&lt;script&gt;&amp;&lt;/script&gt;")
	assert.NotContains(t, titleBlock.Text.Text, "<script>")
}

func TestBuildSlackMessage_PainPointScenario(t *testing.T) {
	result := sampleResult("r1")
	result.Title = "Test Post"
	result.Sentiment = "negative"
	result.Category = "pain_point"

	msg := BuildSlackMessage("Acme", []models.Result{result}, "", time.Now())

	require.Len(t, msg.Attachments, 1)
	attachment := msg.Attachments[0]
	assert.Equal(t, "#ef4444", attachment.Color)

	require.GreaterOrEqual(t, len(attachment.Blocks), 2)
	badges := attachment.Blocks[1].Elements[0].Text
	assert.Contains(t, badges, "😤 Pain Point")
	assert.Contains(t, badges, "👎 negative")
}

func TestBuildSlackMessage_SummaryTruncated(t *testing.T) {
	result := sampleResult("r1")
	for i := 0; i < 30; i++ {
		result.Summary += "0123456789"
	}

	msg := BuildSlackMessage("Acme", []models.Result{result}, "", time.Now())

	require.Len(t, msg.Attachments, 1)
	var summaryText string
	for _, block := range msg.Attachments[0].Blocks {
		if block.Type == "section" && block.Text != nil && block.Accessory == nil {
			summaryText = block.Text.Text
		}
	}
	require.NotEmpty(t, summaryText)
	// "> " prefix + 200 chars + ellipsis marker.
	assert.Equal(t, "> "+result.Summary[:200]+"...", summaryText)
}

func TestBuildSlackMessage_DashboardLink(t *testing.T) {
	msg := BuildSlackMessage("Acme", []models.Result{sampleResult("r1")}, "https://app.example.com/dash", time.Now())

	last := msg.Blocks[len(msg.Blocks)-1]
	assert.Equal(t, "section", last.Type)
	assert.Contains(t, last.Text.Text, "https://app.example.com/dash")

	// No trailing link without a dashboard URL.
	msg = BuildSlackMessage("Acme", []models.Result{sampleResult("r1")}, "", time.Now())
	last = msg.Blocks[len(msg.Blocks)-1]
	assert.Equal(t, "context", last.Type)
}

func TestBuildSlackMessage_ViewButton(t *testing.T) {
	result := sampleResult("r1")

	msg := BuildSlackMessage("Acme", []models.Result{result}, "", time.Now())

	require.Len(t, msg.Attachments, 1)
	accessory := msg.Attachments[0].Blocks[0].Accessory
	require.NotNil(t, accessory)
	assert.Equal(t, "button", accessory.Type)
	assert.Equal(t, "View", accessory.Text.Text)
	assert.Equal(t, result.URL, accessory.URL)
}

func TestBuildSlackMessage_UnmappedCategoryFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		sentiment string
		expected  string
	}{
		{"unmapped category uses sentiment color", "rant", "positive", "#22c55e"},
		{"unmapped both uses neutral default", "rant", "mixed", neutralColor},
		{"mapped category wins over sentiment", "praise", "negative", "#22c55e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sampleResult("r1")
			result.Category = tt.category
			result.Sentiment = tt.sentiment

			msg := BuildSlackMessage("Acme", []models.Result{result}, "", time.Now())

			require.Len(t, msg.Attachments, 1)
			assert.Equal(t, tt.expected, msg.Attachments[0].Color)
		})
	}
}
