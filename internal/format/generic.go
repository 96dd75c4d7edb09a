package format

import "github.com/mentionpulse/alert-engine/internal/models"

// GenericPayload is the minimal JSON envelope sent to endpoints that are
// neither Slack nor Discord. No channel-specific richness is assumed.
type GenericPayload struct {
	MonitorName  string          `json:"monitorName"`
	ResultsCount int             `json:"resultsCount"`
	Results      []GenericResult `json:"results"`
}

type GenericResult struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Platform  string `json:"platform"`
	Sentiment string `json:"sentiment"`
	Category  string `json:"category"`
	Summary   string `json:"summary"`
}

// BuildGenericPayload flattens results into the generic envelope.
func BuildGenericPayload(monitorName string, results []models.Result) *GenericPayload {
	payload := &GenericPayload{
		MonitorName:  monitorName,
		ResultsCount: len(results),
		Results:      make([]GenericResult, 0, len(results)),
	}

	for _, result := range results {
		payload.Results = append(payload.Results, GenericResult{
			Title:     result.Title,
			URL:       result.URL,
			Platform:  result.Platform,
			Sentiment: result.Sentiment,
			Category:  result.Category,
			Summary:   result.Summary,
		})
	}

	return payload
}
