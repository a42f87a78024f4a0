// Package notify reports dispatch outcomes to an external webhook. Its
// failures are logged and swallowed: notification is best-effort and
// must never stall or fail the dispatch path.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/genricoloni/rdsrelay/internal/domain"
	"go.uber.org/zap"
)

const (
	requestTimeout = 10 * time.Second
	maxAttempts    = 3
	retryDelay     = 250 * time.Millisecond
)

// webhookPayload is the JSON body posted per event
type webhookPayload struct {
	Event    string `json:"event"`
	Artist   string `json:"artist"`
	Title    string `json:"title"`
	Text     string `json:"text,omitempty"`
	Detail   string `json:"detail,omitempty"`
	SentAt   string `json:"sent_at"`
	Duration int    `json:"duration_seconds,omitempty"`
}

// WebhookNotifier POSTs one JSON document per event to a configured URL
type WebhookNotifier struct {
	logger *zap.Logger
	client *http.Client
	url    string
}

// New creates a Notifier. With an empty URL, notifications are disabled
// and a no-op implementation is returned.
func New(logger *zap.Logger, url string) domain.Notifier {
	if url == "" {
		logger.Info("Webhook notifications disabled")
		return Noop{}
	}
	return &WebhookNotifier{
		logger: logger,
		client: &http.Client{Timeout: requestTimeout},
		url:    url,
	}
}

// Notify posts the event, retrying a few times on rate limiting and
// server errors. All failures end up in the log, never at the caller.
func (n *WebhookNotifier) Notify(ctx context.Context, event domain.NotifyEvent) {
	body, err := json.Marshal(webhookPayload{
		Event:    string(event.Kind),
		Artist:   event.Track.Artist,
		Title:    event.Track.Title,
		Text:     event.Text,
		Detail:   event.Detail,
		SentAt:   time.Now().UTC().Format(time.RFC3339),
		Duration: event.Track.DurationSeconds,
	})
	if err != nil {
		n.logger.Error("Failed to marshal webhook payload", zap.Error(err))
		return
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := n.post(ctx, body)
		if err == nil && status < http.StatusBadRequest {
			n.logger.Debug("Webhook delivered",
				zap.String("event", string(event.Kind)),
				zap.Int("status", status))
			return
		}

		retryable := err != nil ||
			status == http.StatusTooManyRequests ||
			status >= http.StatusInternalServerError
		if !retryable || attempt == maxAttempts {
			n.logger.Warn("Webhook delivery failed",
				zap.String("event", string(event.Kind)),
				zap.Int("status", status),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay * time.Duration(attempt)):
		}
	}
}

func (n *WebhookNotifier) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "rdsrelay/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// Noop discards all events
type Noop struct{}

// Notify implements domain.Notifier
func (Noop) Notify(context.Context, domain.NotifyEvent) {}
