package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// =============================================================================
// WebhookNotifier
// =============================================================================

// WebhookNotifier posts events as JSON to an HTTP endpoint.
type WebhookNotifier struct {
	URL     string
	Headers map[string]string // Extra request headers, e.g. auth tokens
	Client  *http.Client
}

// NewWebhookNotifier creates a webhook notifier with a 10s request timeout.
func NewWebhookNotifier(url string, headers map[string]string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:     url,
		Headers: headers,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify implements Notifier. Any response status of 400 or above counts
// as a delivery failure.
func (w *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range w.Headers {
		req.Header.Set(key, value)
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
