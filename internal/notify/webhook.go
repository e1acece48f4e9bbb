// Package notify relays new submissions to a third-party form endpoint so
// the site owner gets an email. Delivery is best-effort: it runs after the
// store write and never affects the submission outcome.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/barsamweb/reviews/internal/monitoring"
	"github.com/rs/zerolog/log"
)

// Webhook posts the raw form payload to a form-relay endpoint
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook notifier. An empty URL disables delivery.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether a relay endpoint is configured
func (w *Webhook) Enabled() bool {
	return w.url != ""
}

// Notify posts the submission fields as multipart form data. Failures are
// logged at warn and returned for observability only; callers must not
// fail the submission on a non-nil error.
func (w *Webhook) Notify(ctx context.Context, fields map[string]string) error {
	if !w.Enabled() {
		return nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to encode form field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize form payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, &body)
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		monitoring.RecordWebhookDelivery("error")
		log.Warn().Err(err).Msg("Notification webhook delivery failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		monitoring.RecordWebhookDelivery("error")
		log.Warn().Int("status", resp.StatusCode).Msg("Notification webhook rejected payload")
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}

	monitoring.RecordWebhookDelivery("ok")
	return nil
}
