package senders

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// SignatureHeader carries the HMAC-SHA256 hex digest of the raw request
// body when the webhook has a secret configured.
const SignatureHeader = "X-Signature-SHA256"

// SignPayload computes the hex HMAC-SHA256 signature of body under secret.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// GenericWebhookSender posts a raw JSON body to a user-registered endpoint,
// with optional custom headers and HMAC signing. It also serves "webhook"
// channel alerts whose destination resolved to a generic URL.
type GenericWebhookSender struct {
	client *resty.Client
}

// NewGenericWebhookSender creates a generic webhook sender.
func NewGenericWebhookSender(timeout time.Duration) *GenericWebhookSender {
	return &GenericWebhookSender{
		client: resty.New().SetTimeout(timeout),
	}
}

// Send posts body to the destination. The response body is captured on
// failure to aid debugging; network errors are normalized into the outcome.
func (s *GenericWebhookSender) Send(ctx context.Context, dest Destination, body []byte, headers map[string]string, secret string) WebhookOutcome {
	outcome := WebhookOutcome{Type: dest.Type}

	if dest.URL == "" {
		outcome.Error = "webhook URL is empty"
		return outcome
	}

	req := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)

	for name, value := range headers {
		req.SetHeader(name, value)
	}

	if secret != "" {
		req.SetHeader(SignatureHeader, SignPayload(secret, body))
	}

	resp, err := req.Post(dest.URL)
	if err != nil {
		logrus.Errorf("Webhook send to %s failed: %v", dest.URL, err)
		outcome.Error = fmt.Sprintf("webhook request failed: %v", err)
		return outcome
	}

	outcome.StatusCode = resp.StatusCode()
	outcome.ResponseBody = string(resp.Body())

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		logrus.Errorf("Webhook %s returned status %d", dest.URL, resp.StatusCode())
		outcome.Error = fmt.Sprintf("webhook returned status %d", resp.StatusCode())
		return outcome
	}

	outcome.Success = true
	return outcome
}
