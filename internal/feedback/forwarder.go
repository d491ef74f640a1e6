// Package feedback forwards user ratings to an external feedback-tracking service.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/advenoh/ragchat/internal/models"
)

// Forwarder posts feedback to a configured webhook. Forwarding is best-effort:
// the caller logs and discards the returned error, never surfacing it.
type Forwarder struct {
	webhookURL string
	client     *http.Client
}

// NewForwarder creates a forwarder. An empty webhookURL disables forwarding.
func NewForwarder(webhookURL string, timeout time.Duration) *Forwarder {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Forwarder{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a webhook is configured.
func (f *Forwarder) Enabled() bool {
	return f.webhookURL != ""
}

// Forward posts the feedback to the webhook.
func (f *Forwarder) Forward(ctx context.Context, fb *models.Feedback) error {
	if !f.Enabled() {
		return nil
	}
	body, _ := json.Marshal(map[string]string{
		"message_id": fb.MessageID,
		"blog_id":    fb.BlogID,
		"question":   fb.Question,
		"rating":     fb.Rating,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("feedback forwarding failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("feedback forwarding failed: %s", resp.Status)
	}
	return nil
}
