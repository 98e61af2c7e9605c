package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gridpool/autobid/core/logger"
)

// WebhookSink posts notifications as JSON to an HTTP endpoint. Delivery
// errors are logged and swallowed.
type WebhookSink struct {
	url    string
	client *http.Client
	log    logger.Logger
}

type webhookPayload struct {
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// NewWebhookSink creates a sink posting to the configured default URL.
func NewWebhookSink(cfg Config, log logger.Logger) *WebhookSink {
	if log == nil {
		log = logger.Nop{}
	}
	timeout := time.Duration(cfg.WebhookTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookSink{
		url:    cfg.WebhookURL,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Notify posts to the default endpoint.
func (s *WebhookSink) Notify(title, body string) {
	s.NotifyTo(s.url, title, body)
}

// NotifyTo posts to an alert-specific endpoint.
func (s *WebhookSink) NotifyTo(url, title, body string) {
	if url == "" {
		return
	}
	payload, err := json.Marshal(webhookPayload{Title: title, Body: body, SentAt: time.Now()})
	if err != nil {
		s.log.Errorf("webhook marshal: %v", err)
		return
	}
	resp, err := s.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		s.log.Warnf("webhook delivery failed: %v", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		s.log.Warnf("webhook delivery returned status %d", resp.StatusCode)
	}
}
