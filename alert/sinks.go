package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LogSink writes alert events to the structured log
type LogSink struct {
	log *zap.Logger
}

// NewLogSink returns a sink logging alerts at warn level
func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

// Send logs the event with one entry per critical person
func (s *LogSink) Send(_ context.Context, ev Event) error {

	for _, p := range ev.People {
		s.log.Warn("critical risk alert",
			zap.Int("person_id", p.ID),
			zap.Int("score", p.Score),
			zap.String("zone", p.Zone),
			zap.Time("time", ev.Time),
		)
	}

	return nil
}

// WebhookSink POSTs alert events as JSON to an HTTP endpoint
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink returns a sink posting to the given URL.  Timeout
// bounds the whole request, a zero value defaults to 5 seconds
func NewWebhookSink(url string, timeout time.Duration) *WebhookSink {

	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Send posts the event, any non-2xx response is an error
func (s *WebhookSink) Send(ctx context.Context, ev Event) error {

	body, err := json.Marshal(ev)

	if err != nil {
		return fmt.Errorf("encoding alert event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url,
		bytes.NewReader(body))

	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)

	if err != nil {
		return fmt.Errorf("posting alert to %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %s returned status %d", s.url, resp.StatusCode)
	}

	return nil
}
