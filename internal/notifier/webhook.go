package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/support/retry"
)

// WebhookService POSTs each message as JSON to a fixed URL (chat bridge,
// kitchen display, automation tool).
type WebhookService struct {
	url    string
	client *http.Client
	retry  retry.Config
}

// WebhookOption customises a WebhookService.
type WebhookOption func(*WebhookService)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(s *WebhookService) {
		if client != nil {
			s.client = client
		}
	}
}

// WithRetry replaces the default retry policy.
func WithRetry(cfg retry.Config) WebhookOption {
	return func(s *WebhookService) {
		s.retry = cfg
	}
}

// NewWebhookService validates url and builds the notifier.
func NewWebhookService(url string, timeout time.Duration, opts ...WebhookOption) (*WebhookService, error) {
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("webhook url must be http(s): %q", url)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &WebhookService{
		url:    url,
		client: &http.Client{Timeout: timeout},
		retry:  retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send delivers msg, retrying network errors and 5xx responses.
func (s *WebhookService) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.Event) == "" {
		return fmt.Errorf("notification event is required / 通知事件不能为空")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	return retry.Do(ctx, s.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Brina-Event", msg.Event)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("webhook responded %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return retry.Permanent(fmt.Errorf("webhook rejected notification: %d", resp.StatusCode))
		}
		return nil
	})
}
